package bootstrap

import (
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		addr    string
		wantNil bool
	}{
		{"empty", "", true},
		{"host and port", mr.Addr(), false},
		{"url", "redis://" + mr.Addr() + "/0", false},
		{"bad url", "redis://%zz", true},
		{"unreachable", "127.0.0.1:1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewRedisClient(tt.addr)
			if tt.wantNil {
				assert.Nil(t, client)
				return
			}
			require.NotNil(t, client)
			t.Cleanup(func() { _ = client.Close() })
		})
	}
}

func TestInitRuntime_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:     "sqlite",
		DBSQLitePath: "file::memory:",
		DBSchemaMode: "auto",
	}

	db, rdb, err := InitRuntime(cfg, Options{SkipRedis: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	assert.Nil(t, rdb)
	assert.True(t, db.Migrator().HasTable(&models.Article{}))
}
