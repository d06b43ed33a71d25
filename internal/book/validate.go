// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package book

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// MinPhoneDigits is the shortest accepted phone number.
const MinPhoneDigits = 10

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+$`)

// ValidatePhone reports whether phone is at least MinPhoneDigits runes long
// and every rune is a decimal digit (Unicode category Nd). Superscripts and
// other numeric symbols are rejected.
func ValidatePhone(phone string) bool {
	if utf8.RuneCountInString(phone) < MinPhoneDigits {
		return false
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidateEmail reports whether email looks like a standard address. The
// whole string must match, so a trailing newline is rejected.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
