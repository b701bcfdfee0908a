package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits", "998901234567", "998901234567"},
		{"plus prefix", "+998901234567", "998901234567"},
		{"double zero prefix", "00998901234567", "998901234567"},
		{"single zero prefix", "0998901234567", "998901234567"},
		{"spaces and hyphens", "+998 90 123-45-67", "998901234567"},
		{"parentheses and dots", "+998(90)123.45.67", "998901234567"},
		{"significant zero kept", "998001234567", "998001234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhone_sameNumberAllFormats(t *testing.T) {
	formats := []string{
		"998901234567",
		"+998901234567",
		"00998901234567",
		"+998 90 123 45 67",
		"998-90-123-45-67",
	}
	for _, f := range formats {
		got, err := NormalizePhone(f)
		require.NoError(t, err, "format %q", f)
		assert.Equal(t, "998901234567", got, "format %q", f)
	}
}

func TestNormalizePhone_invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"abc",
		"12345",
		"998901234567x",
		"+99890123456789012345",
	} {
		_, err := NormalizePhone(in)
		assert.ErrorIs(t, err, ErrInvalidPhone, "input %q", in)
	}
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "99********67", MaskPhone("998901234567"))
	assert.Equal(t, "****", MaskPhone("123"))
}
