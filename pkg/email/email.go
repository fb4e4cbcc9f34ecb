// Package email derives resident profile fields from self-registration
// addresses.
package email

import (
	"strings"
	"unicode"
)

// suffixTokens are generational markers residents append to the local part;
// they never become a last name. "none" mirrors the profile convention of
// writing the literal word when there is no suffix.
var suffixTokens = map[string]bool{
	"jr":   true,
	"sr":   true,
	"ii":   true,
	"iii":  true,
	"iv":   true,
	"none": true,
}

// DeriveNameFromEmail guesses first and last name from an address local
// part: "maria.santos1987@..." becomes ("Maria", "Santos"). Trailing digits
// and suffix tokens are stripped before picking names. When nothing usable
// remains, the placeholder "Resident" fills both so the profile still passes
// the non-empty name invariant.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	raw := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimRightFunc(t, unicode.IsDigit)
		if t == "" || suffixTokens[strings.ToLower(t)] {
			continue
		}
		tokens = append(tokens, t)
	}

	if len(tokens) == 0 {
		return "Resident", "Resident"
	}

	first := title(tokens[0])
	last := "Resident"
	if len(tokens) > 1 {
		last = title(tokens[len(tokens)-1])
	}
	return first, last
}

// title normalizes a token to leading-capital form.
func title(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
