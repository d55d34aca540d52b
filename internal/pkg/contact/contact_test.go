package contact

import (
	"errors"
	"testing"

	"github.com/expertresume/notification-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone_CanonicalForms(t *testing.T) {
	// All accepted shapes of the same number collapse to one canonical form.
	inputs := []string{
		"9876543210",
		"919876543210",
		"+919876543210",
		"+91 98765 43210",
		"98765-43210",
	}
	for _, in := range inputs {
		got, err := NormalizePhone(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, "9876543210", got, "input %q", in)
	}
}

func TestNormalizePhone_RejectsWrongLength(t *testing.T) {
	for _, in := range []string{"", "12345", "987654321", "98765432101", "1234567890123"} {
		_, err := NormalizePhone(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.Is(err, domain.ErrInvalidFormat))
	}
}

func TestNormalizePhone_TwelveDigitsWithoutPrefixRejected(t *testing.T) {
	// 12 digits not starting with the country prefix cannot be reduced to 10.
	_, err := NormalizePhone("129876543210")
	assert.True(t, errors.Is(err, domain.ErrInvalidFormat))
}

func TestIsValidPhone(t *testing.T) {
	valid := []string{"9876543210", "6123456789", "919876543210", "+919876543210"}
	for _, in := range valid {
		assert.True(t, IsValidPhone(in), "input %q", in)
	}
	invalid := []string{"5876543210", "987654321", "915123456789", "+15551234567", "abc"}
	for _, in := range invalid {
		assert.False(t, IsValidPhone(in), "input %q", in)
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.com"))
	assert.True(t, IsValidEmail("user.name+tag@sub.domain.io"))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail("a b@c.com"))
	assert.False(t, IsValidEmail("not-an-email"))
}

func TestInternationalFormat(t *testing.T) {
	assert.Equal(t, "+919876543210", InternationalFormat("9876543210"))
	assert.Equal(t, "+919876543210", InternationalFormat("919876543210"))
	assert.Equal(t, "+919876543210", InternationalFormat("+91 98765 43210"))
}

func TestNormalizeForKey_NeverFails(t *testing.T) {
	assert.Equal(t, "9876543210", NormalizeForKey("+919876543210"))
	assert.Equal(t, "12345", NormalizeForKey("123-45"))
	assert.Equal(t, "", NormalizeForKey("no digits"))
}
