package session

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

func newRedisStore(t *testing.T) (RevocationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRevocationStore(client), mr
}

func testUser() *models.User {
	return &models.User{ID: 12, Username: "alice", Role: models.RoleAdmin}
}

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager(testSecret, time.Hour, nil)

	token, issued, err := m.Issue(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, issued.SessionID)

	p, err := m.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(12), p.UserID)
	assert.Equal(t, "alice", p.Username)
	assert.True(t, p.IsAdmin())
	assert.Equal(t, issued.SessionID, p.SessionID)
}

func TestManager_ParseRejects(t *testing.T) {
	m := NewManager(testSecret, time.Hour, nil)
	good, _, err := m.Issue(testUser())
	require.NoError(t, err)

	otherKey, _, err := NewManager("another-secret-key-that-is-also-long", time.Hour, nil).Issue(testUser())
	require.NoError(t, err)

	expired := NewManager(testSecret, time.Hour, nil)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(testUser())
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "12", "iss": issuer, "aud": audience})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong key":    otherKey,
		"expired":      old,
		"alg none":     unsigned,
		"truncated":    good[:len(good)-4],
		"empty string": "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestManager_IssueRequiresSecret(t *testing.T) {
	_, _, err := NewManager("", time.Hour, nil).Issue(testUser())
	assert.Error(t, err)
}

func TestManager_RevokeWithRedis(t *testing.T) {
	store, mr := newRedisStore(t)
	m := NewManager(testSecret, time.Hour, store)
	ctx := context.Background()

	token, p, err := m.Issue(testUser())
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, p))
	assert.True(t, mr.Exists(revokedKeyPrefix+p.SessionID))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL(revokedKeyPrefix+p.SessionID).Seconds(), 5)

	_, err = m.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrRevoked)

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists(revokedKeyPrefix+p.SessionID))
}

func TestManager_RedisOutageFailsOpen(t *testing.T) {
	store, mr := newRedisStore(t)
	m := NewManager(testSecret, time.Hour, store)

	token, _, err := m.Issue(testUser())
	require.NoError(t, err)

	mr.Close()
	p, err := m.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(12), p.UserID)
}

func TestNewRedisRevocationStore_NilClient(t *testing.T) {
	assert.Nil(t, NewRedisRevocationStore(nil))

	m := NewManager(testSecret, time.Hour, NewRedisRevocationStore(nil))
	_, p, err := m.Issue(testUser())
	require.NoError(t, err)
	assert.NoError(t, m.Revoke(context.Background(), p))
}
