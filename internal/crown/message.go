package crown

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxMessageLength is the longest claim message, in code points.
const MaxMessageLength = 100

// NormalizeMessage trims surrounding whitespace and applies NFC so that
// composed and decomposed input count the same number of code points.
func NormalizeMessage(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ValidateMessage returns the normalized message or an INVALID_INPUT error
// when it is empty, not UTF-8, or longer than MaxMessageLength.
func ValidateMessage(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", New(CodeInvalidInput, "message is not valid UTF-8")
	}
	msg := NormalizeMessage(s)
	if msg == "" {
		return "", New(CodeInvalidInput, "enter a message for your reign")
	}
	if n := utf8.RuneCountInString(msg); n > MaxMessageLength {
		return "", New(CodeInvalidInput, fmt.Sprintf("message is %d characters, limit is %d", n, MaxMessageLength))
	}
	return msg, nil
}
