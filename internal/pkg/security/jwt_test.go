package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(7, "sess-abc")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "sess-abc", claims.SessionID)
	assert.Equal(t, "Glimpse", claims.Issuer)
}

func TestValidateToken_Tampered(t *testing.T) {
	token, err := GenerateToken(7, "sess-abc")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + ".invalidsignature"

	_, err = ValidateToken(tampered)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestExtractSignature(t *testing.T) {
	token, err := GenerateToken(7, "sess-abc")
	require.NoError(t, err)

	sig, err := ExtractSignature(token)
	require.NoError(t, err)
	assert.Equal(t, strings.Split(token, ".")[2], sig)

	_, err = ExtractSignature("only.two")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pw")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pw", hash)

	assert.NoError(t, CheckPasswordHash("s3cret-pw", hash))
	assert.Error(t, CheckPasswordHash("wrong", hash))
}
