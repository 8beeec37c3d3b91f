package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/task-api/internal/core/domain"
)

func TestJWTCodec_RoundTrip(t *testing.T) {
	codec := NewJWTCodec("secret", time.Hour)

	tok, err := codec.Encode("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	id, err := codec.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-42", id)
}

func TestJWTCodec_UserIDClaimName(t *testing.T) {
	codec := NewJWTCodec("secret", 0)
	tok, err := codec.Encode("7")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "7", claims["user_id"])
	assert.NotContains(t, claims, "exp")
}

func TestJWTCodec_Rejects(t *testing.T) {
	codec := NewJWTCodec("secret", time.Hour)
	good, err := codec.Encode("user-1")
	require.NoError(t, err)

	otherKey, err := NewJWTCodec("other-secret", time.Hour).Encode("user-1")
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	emptyUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("secret"))
	require.NoError(t, err)

	goodParts := strings.Split(good, ".")
	otherParts := strings.Split(otherKey, ".")
	tampered := goodParts[0] + "." + goodParts[1] + "." + otherParts[2]

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"tampered":       tampered,
		"wrong secret":   otherKey,
		"none algorithm": noneAlg,
		"empty user id":  emptyUser,
	}

	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode(tok)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestJWTCodec_Expiry(t *testing.T) {
	codec := NewJWTCodec("secret", time.Minute)
	issued := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return issued }

	tok, err := codec.Encode("user-1")
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.Add(30 * time.Second) }
	_, err = codec.Decode(tok)
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = codec.Decode(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestJWTCodec_NoTTLNeverExpires(t *testing.T) {
	codec := NewJWTCodec("secret", 0)
	issued := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return issued }

	tok, err := codec.Encode("user-1")
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.AddDate(5, 0, 0) }
	id, err := codec.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestJWTCodec_EncodeEmptyUser(t *testing.T) {
	_, err := NewJWTCodec("secret", 0).Encode("")
	assert.Error(t, err)
}
