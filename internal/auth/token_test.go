package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_MintAndVerify(t *testing.T) {
	pair, err := testSigner.Mint(Identity{ID: 42, Phone: "998901234567", Role: "patient"})
	require.NoError(t, err)

	claims, err := testSigner.Verify(pair.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "998901234567", claims.Phone)
	assert.Equal(t, "patient", claims.Role)
	assert.Equal(t, "mymd", claims.Issuer)
	assert.NotEmpty(t, claims.ID, "jti must be set")

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	assert.WithinDuration(t, time.Now().Add(time.Hour), pair.AccessTokenExpiry, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), pair.RefreshTokenExpiry, 5*time.Second)
}

func TestSigner_RefreshTokenEntropy(t *testing.T) {
	pair, err := testSigner.Mint(Identity{ID: 1, Phone: "998901234567", Role: "patient"})
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(pair.RefreshToken)
	require.NoError(t, err)
	assert.Len(t, raw, 32, "refresh token must carry 256 bits")

	other, err := testSigner.Mint(Identity{ID: 1, Phone: "998901234567", Role: "patient"})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, other.RefreshToken)
}

func TestSigner_UniqueJTI(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		pair, err := testSigner.Mint(Identity{ID: 1, Phone: "998901234567", Role: "patient"})
		require.NoError(t, err)
		claims, err := testSigner.Verify(pair.AccessToken)
		require.NoError(t, err)
		assert.False(t, seen[claims.ID], "jti %q repeated", claims.ID)
		seen[claims.ID] = true
	}
}

func TestSigner_VerifyRejectsForeignTokens(t *testing.T) {
	pair, err := testSigner.Mint(Identity{ID: 7, Phone: "998901234567", Role: "patient"})
	require.NoError(t, err)

	otherKey := NewSigner("another-secret-key-with-enough-len!!", "mymd", "mymd-clients", time.Hour, time.Hour)
	_, err = otherKey.Verify(pair.AccessToken)
	assert.Error(t, err, "token signed with a different key must not verify")

	otherIssuer := NewSigner("test-secret-at-least-32-characters!!", "someone-else", "mymd-clients", time.Hour, time.Hour)
	_, err = otherIssuer.Verify(pair.AccessToken)
	assert.Error(t, err, "issuer mismatch must not verify")
}

func TestSigner_VerifyRejectsExpired(t *testing.T) {
	expired := NewSigner("test-secret-at-least-32-characters!!", "mymd", "mymd-clients", -time.Minute, time.Hour)
	pair, err := expired.Mint(Identity{ID: 7, Phone: "998901234567", Role: "patient"})
	require.NoError(t, err)

	_, err = expired.Verify(pair.AccessToken)
	assert.Error(t, err)
}

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, otpLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q must be numeric", code)
		}
	}
}
