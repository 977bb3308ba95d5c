package middleware

import (
	"errors"
	"unicode"
)

// ValidatePhone validates a phone identifier. The durable store keys on this
// value, so it must be present and reasonably shaped; formatting characters
// are allowed because session derivation strips them.
func ValidatePhone(phone string) error {
	if len(phone) == 0 {
		return errors.New("phone cannot be empty")
	}
	if len(phone) > 32 {
		return errors.New("phone exceeds maximum length")
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) && r != '+' && r != '-' && r != '(' && r != ')' && r != ' ' {
			return errors.New("phone contains invalid characters")
		}
	}
	return nil
}

// ValidateClientID validates a token-request client ID.
func ValidateClientID(id string) error {
	if len(id) == 0 {
		return errors.New("client_id cannot be empty")
	}
	if len(id) > 64 {
		return errors.New("client_id exceeds maximum length")
	}
	return nil
}
