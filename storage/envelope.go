package storage

import (
	"fmt"

	"github.com/jmcleod/stockroom/internal/util"
)

const envelopeScheme = "aes256gcm"

// Envelope is a sealed value containing AES-256-GCM encrypted data.
type Envelope struct {
	Ver        int    `json:"ver"`
	Scheme     string `json:"scheme"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Seal encrypts plaintext into an Envelope using key and aad.
func Seal(key, plaintext, aad []byte) (*Envelope, error) {
	sealed, err := util.SealAESGCM(plaintext, key, aad)
	if err != nil {
		return nil, err
	}
	// SealAESGCM returns nonce || ciphertext.
	return &Envelope{
		Ver:        1,
		Scheme:     envelopeScheme,
		Nonce:      sealed[:12],
		Ciphertext: sealed[12:],
	}, nil
}

// Open decrypts an Envelope using key and aad.
func Open(key []byte, env *Envelope, aad []byte) ([]byte, error) {
	if env.Ver != 1 {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Ver)
	}
	if env.Scheme != envelopeScheme {
		return nil, fmt.Errorf("unsupported envelope scheme: %s", env.Scheme)
	}
	full := make([]byte, len(env.Nonce)+len(env.Ciphertext))
	copy(full, env.Nonce)
	copy(full[len(env.Nonce):], env.Ciphertext)
	return util.OpenAESGCM(full, key, aad)
}
