package util

import "golang.org/x/text/unicode/norm"

// NormalizeNFC returns the canonical composed form of s so that visually
// identical strings compare equal.
func NormalizeNFC(s string) string {
	return norm.NFC.String(s)
}
