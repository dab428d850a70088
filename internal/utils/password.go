package utils

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PIN length bounds accepted at the terminal keypad.
const (
	MinPINLength = 4
	MaxPINLength = 8
)

var ErrWeakPIN = errors.New("pin must be 4 to 8 digits")

// ValidatePIN accepts 4 to 8 ASCII digits.
func ValidatePIN(pin string) error {
	if len(pin) < MinPINLength || len(pin) > MaxPINLength {
		return ErrWeakPIN
	}
	for _, r := range pin {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return ErrWeakPIN
		}
	}
	return nil
}

// HashPIN returns bcrypt hash using the given cost.
func HashPIN(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPIN safely compares bcrypt hash and plain PIN.
func VerifyPIN(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
