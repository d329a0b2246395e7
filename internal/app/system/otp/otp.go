// internal/app/system/otp/otp.go

// Package otp generates one-time passcodes and the cache keys that carry
// in-flight verification state. The keys are the contract between the
// registration, email verification, and password reset flows: each flow
// writes a key with a TTL and the next step in the flow consumes it.
package otp

import (
	"crypto/rand"
	"math/big"
)

// CodeLength is the number of digits in a generated passcode.
const CodeLength = 6

// GenerateCode returns a random numeric passcode of CodeLength digits,
// left-padded with zeros. Uses crypto/rand so codes are not guessable from
// earlier codes.
func GenerateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < CodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	digits := n.String()
	for len(digits) < CodeLength {
		digits = "0" + digits
	}
	return digits, nil
}

// RegistrationKey stages a pending registration, keyed by the phone number
// awaiting SMS verification.
func RegistrationKey(phone string) string {
	return "verification-" + phone
}

// EmailVerifiedKey marks an email address as OTP-verified so the password
// reset endpoint can trust it. Deleted when the reset completes.
func EmailVerifiedKey(email string) string {
	return "otp-verified-" + email
}

// PasswordResetKey stores the emailed passcode for a password reset.
func PasswordResetKey(email string) string {
	return "pass-" + email
}
