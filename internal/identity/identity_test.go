package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	raw, err := Issue("secret", "0901234567", time.Minute)
	require.NoError(t, err)

	id, err := Parse("secret", raw)

	require.NoError(t, err)
	assert.Equal(t, "0901234567", id.Phone)
	assert.Equal(t, raw, id.Token)
	assert.True(t, id.Present())
}

func TestParseRejects(t *testing.T) {
	raw, err := Issue("secret", "0901234567", time.Minute)
	require.NoError(t, err)

	_, err = Parse("other", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := Issue("secret", "0901234567", -time.Minute)
	require.NoError(t, err)
	_, err = Parse("secret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noPhone, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "CUSTOMER"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = Parse("secret", noPhone)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestContextRoundTrip(t *testing.T) {
	assert.False(t, FromContext(context.Background()).Present())

	ctx := NewContext(context.Background(), Identity{Phone: "1", Token: "t"})

	assert.Equal(t, Identity{Phone: "1", Token: "t"}, FromContext(ctx))
}
