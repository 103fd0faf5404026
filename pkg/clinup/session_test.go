package clinup

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStore_RoundTrip(t *testing.T) {
	store := FileTokenStore{Path: filepath.Join(t.TempDir(), "clinup", "token.json")}

	c, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, c.Token)

	require.NoError(t, store.Save(Credentials{Token: "t1", Roles: []string{RoleHost}}))
	c, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "t1", c.Token)
	assert.Equal(t, []string{RoleHost}, c.Roles)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
}

func TestSession_LoadsLazilyAndSignsOut(t *testing.T) {
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save(Credentials{Token: "persisted"}))

	s := NewSession(store)
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "persisted", tok)

	require.NoError(t, s.SignOut())
	_, err = s.Token()
	assert.ErrorIs(t, err, ErrMissingToken)

	c, _ := store.Load()
	assert.Empty(t, c.Token)
}

func TestSession_RolesFallBackToClaims(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Roles:            []string{RoleProvider},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	s := NewSession(nil)
	require.NoError(t, s.SignIn(signed, nil))
	assert.Equal(t, []string{RoleProvider}, s.Roles())
	assert.False(t, s.HasRole(RoleHost))
}

func TestSession_ExpiredTokenIsMissing(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	s := NewSession(nil)
	s.Now = func() time.Time { return now }
	require.NoError(t, s.SignIn(signed, []string{RoleHost}))
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, signed, tok)

	s.Now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = s.Token()
	assert.ErrorIs(t, err, ErrMissingToken)

	c := New("http://127.0.0.1:1", s)
	_, err = c.ListReservations(context.Background())
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestClaims_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now)}}
	if !c.Expired(now) {
		t.Fatalf("expected token expiring at now to be expired")
	}
	if c.Expired(now.Add(-time.Second)) {
		t.Fatalf("expected token to be valid one second before exp")
	}
	if (&Claims{}).Expired(now) {
		t.Fatalf("expected token without exp to never expire")
	}
}

func TestParseClaims_Garbage(t *testing.T) {
	if _, err := ParseClaims("not-a-jwt"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := ParseClaims(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
