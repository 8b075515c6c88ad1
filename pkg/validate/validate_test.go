package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"user@example.com", true},
		{"  user@example.com  ", true},
		{"first.last@sub.domain.vn", true},
		{"no-at-sign", false},
		{"user@nodot", false},
		{"user @example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmail(tt.input))
		})
	}
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("0912345678"))
	assert.True(t, IsPhone("  849123456789  "))
	assert.False(t, IsPhone("123456789"), "nine digits is too short")
	assert.False(t, IsPhone("0912345678901"), "thirteen digits is too long")
	assert.False(t, IsPhone("09-1234-5678"))
	assert.False(t, IsPhone(""))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   \t\n"))
	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty("  x  "))
}

func TestMatchesConfirm(t *testing.T) {
	assert.True(t, MatchesConfirm("secret1", "secret1"))
	assert.True(t, MatchesConfirm(" secret1 ", "secret1"))
	assert.False(t, MatchesConfirm("secret1", "secret2"))
}

func TestHasMinLength(t *testing.T) {
	assert.True(t, HasMinLength("123456"))
	assert.True(t, HasMinLength("a-much-longer-password"))
	assert.False(t, HasMinLength("12345"))
	assert.False(t, HasMinLength("  12345  "), "surrounding whitespace does not count")
}
