package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

// BookingCodeBytes is the random source size of a booking code (8 hex chars).
const BookingCodeBytes = 4

var bookingCodePattern = regexp.MustCompile(`^[a-f0-9]{8}$`)

// GenerateSecureToken returns length random bytes, hex encoded.
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateBookingCode returns a fresh 8-character lowercase hex code.
func GenerateBookingCode() (string, error) {
	return GenerateSecureToken(BookingCodeBytes)
}

// NormalizeBookingCode trims and lower-cases a caller supplied code.
func NormalizeBookingCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func IsValidBookingCodeFormat(code string) bool {
	return bookingCodePattern.MatchString(NormalizeBookingCode(code))
}

// BookingCodesMatch compares a supplied code against the stored one in constant time.
func BookingCodesMatch(stored, supplied string) bool {
	if stored == "" || !IsValidBookingCodeFormat(supplied) {
		return false
	}
	s := NormalizeBookingCode(supplied)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(s)) == 1
}
