package telegram

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	errLoginLength  = errors.New("login must be 3 to 20 characters")
	errLoginCharset = errors.New("login must contain only letters and digits")
	errBadAmount    = errors.New("amount must be a positive number")
)

// validateLogin checks the login shape: 3-20 characters, letters and
// digits only. Counted and classified by rune, so Cyrillic logins pass.
func validateLogin(login string) error {
	if n := utf8.RuneCountInString(login); n < 3 || n > 20 {
		return errLoginLength
	}
	for _, r := range login {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return errLoginCharset
		}
	}

	return nil
}

// parseAmount parses a positive decimal amount, accepting either comma
// or dot as the decimal separator.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")

	amount, err := decimal.NewFromString(s)
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, errBadAmount
	}

	return amount, nil
}

// parseDate parses a calendar date in ГГГГ-ММ-ДД format. Out-of-range
// components are rejected.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(s))
}
