package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name    string
		login   string
		wantErr error
	}{
		{"valid", "alice1", nil},
		{"minimal length", "abc", nil},
		{"maximal length", "a1234567890123456789", nil},
		{"cyrillic", "алиса1", nil},
		{"minimal cyrillic counted in runes", "ива", nil},
		{"too short", "ab", errLoginLength},
		{"too long", "a12345678901234567890", errLoginLength},
		{"cyrillic too short counted in runes", "ив", errLoginLength},
		{"cyrillic too long counted in runes", "а12345678901234567890", errLoginLength},
		{"empty", "", errLoginLength},
		{"space", "alice 1", errLoginCharset},
		{"punctuation", "alice!", errLoginCharset},
		{"underscore", "alice_1", errLoginCharset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateLogin(tt.login)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseAmountSeparators(t *testing.T) {
	dot, err := parseAmount("150.50")
	require.NoError(t, err)

	comma, err := parseAmount("150,50")
	require.NoError(t, err)

	assert.True(t, dot.Equal(comma), "comma and dot separators must parse equally")
	assert.Equal(t, "150.50", dot.StringFixed(2))
}

func TestParseAmountRejectsBadInput(t *testing.T) {
	for _, s := range []string{"", "abc", "-5", "0", "0.00", "10.5.5", "10,5,5"} {
		_, err := parseAmount(s)
		assert.Error(t, err, "input %q must be rejected", s)
	}
}

func TestParseAmountTrimsSpace(t *testing.T) {
	amount, err := parseAmount("  99,90  ")
	require.NoError(t, err)
	assert.Equal(t, "99.90", amount.StringFixed(2))
}

func TestParseDate(t *testing.T) {
	date, err := parseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, 2024, date.Year())
	assert.Equal(t, 3, int(date.Month()))
	assert.Equal(t, 5, date.Day())
}

func TestParseDateRejectsBadInput(t *testing.T) {
	for _, s := range []string{"2024-13-40", "05.03.2024", "2024/03/05", "yesterday", ""} {
		_, err := parseDate(s)
		assert.Error(t, err, "input %q must be rejected", s)
	}
}
