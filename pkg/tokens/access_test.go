package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	iss := &Issuer{Secret: []byte("k"), TTL: 30 * time.Minute}

	tok, exp, err := iss.Issue("alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)

	claims, err := AccessClaimsFromToken(tok, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	iss := &Issuer{Secret: []byte("k"), TTL: time.Minute}
	tok, _, err := iss.Issue("alice")
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, []byte("other"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	iss := &Issuer{
		Secret: []byte("k"),
		TTL:    time.Minute,
		Now:    func() time.Time { return time.Now().Add(-time.Hour) },
	}
	tok, _, err := iss.Issue("alice")
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, []byte("k"))
	require.ErrorIs(t, err, ErrInvalidToken)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsOtherAlg(t *testing.T) {
	claims := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, []byte("k"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := AccessClaimsFromToken("not.a.token", []byte("k"))
	require.ErrorIs(t, err, ErrInvalidToken)
}
