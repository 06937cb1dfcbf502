// Package icrypto builds the additional authenticated data bound into sealed
// values.
package icrypto

import (
	"encoding/binary"
)

const (
	aadSession = "SESSION"
	aadValue   = "VALUE"
)

// AADSessionValue binds a sealed value to the store namespace and key it was
// written under.
func AADSessionValue(namespace, key string, ver int) []byte {
	return buildAAD(aadSession, aadValue, namespace, key, ver)
}

// buildAAD length-prefixes strings so that ("ab","c") and ("a","bc") differ.
func buildAAD(parts ...any) []byte {
	var res []byte
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			res = appendLenPrefix(res, []byte(v))
		case []byte:
			res = appendLenPrefix(res, v)
		case uint64:
			b := make([]byte, 8)
			binary.BigEndian.PutUint64(b, v)
			res = append(res, b...)
		case int:
			b := make([]byte, 4)
			binary.BigEndian.PutUint32(b, uint32(v))
			res = append(res, b...)
		}
	}
	return res
}

func appendLenPrefix(b, data []byte) []byte {
	l := make([]byte, 4)
	binary.BigEndian.PutUint32(l, uint32(len(data)))
	b = append(b, l...)
	b = append(b, data...)
	return b
}
