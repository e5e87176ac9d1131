package projector

import (
	"golang.org/x/crypto/sha3"

	"github.com/core-coin/fortunity-sync/pkg/validation"
)

const (
	ReferralCodeLength = 8

	referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ReferralCode derives a code of n characters from the wallet address. The
// same wallet always yields the same code; a longer n extends the shorter one.
func ReferralCode(wallet string, n int) string {
	digest := sha3.Sum256([]byte(validation.NormalizeAddress(wallet)))
	if n > len(digest) {
		n = len(digest)
	}
	code := make([]byte, n)
	for i := 0; i < n; i++ {
		code[i] = referralAlphabet[int(digest[i])%len(referralAlphabet)]
	}
	return string(code)
}
