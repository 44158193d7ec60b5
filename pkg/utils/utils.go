package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/oklog/ulid/v2"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	NormalizePhoneNumber(raw string) (string, error)
	NewVerificationCode() (string, error)
	TruncateText(text string, max int) string
}

type utils struct{}

func New() IUtils {
	return &utils{}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// NormalizePhoneNumber reduces a phone number to E.164-ish digits with an
// optional leading plus. Anything without 8-15 digits is rejected.
func (u *utils) NormalizePhoneNumber(raw string) (string, error) {
	var b strings.Builder
	for i, r := range raw {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if r == ' ' || r == '-' || r == '(' || r == ')' || r == '.' {
			continue
		}
		return "", errors.New("phone number contains invalid characters")
	}

	normalized := b.String()
	digits := strings.TrimPrefix(normalized, "+")
	if len(digits) < 8 || len(digits) > 15 {
		return "", errors.New("phone number must contain 8-15 digits")
	}

	return normalized, nil
}

// NewVerificationCode returns a crypto-random code of exactly 6 digits,
// leading zeros included.
func (u *utils) NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}

	code := n.Text(10)
	for len(code) < 6 {
		code = "0" + code
	}
	return code, nil
}

func (u *utils) TruncateText(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	if max <= 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}
