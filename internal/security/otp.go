package security

import "math/rand/v2"

const otpDigits = "0123456789"

// NewOTP returns a fixed-length numeric one-time code. The code is a
// low-value, short-lived, single-use secret, so a non-cryptographic source
// is sufficient.
func NewOTP(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = otpDigits[rand.IntN(len(otpDigits))]
	}
	return string(b)
}
