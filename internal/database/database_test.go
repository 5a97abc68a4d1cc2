package database

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_UnsupportedDriver(t *testing.T) {
	cfg := Config{
		Driver:             "sqlite",
		ConnectionString:   "file::memory:",
		MaxOpenConnections: 10,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    time.Hour,
	}

	db, err := Connect(cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "unsupported database driver: sqlite")
}

func TestConnect_InvalidMySQLDSN(t *testing.T) {
	db, err := Connect(Config{Driver: "mysql", ConnectionString: "not a dsn"})
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "invalid mysql connection string")
}

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{"without options", "postflow:secret@tcp(localhost:3306)/postflow"},
		{"parseTime disabled", "postflow:secret@tcp(localhost:3306)/postflow?parseTime=false"},
		{"local location", "postflow:secret@tcp(db:3306)/postflow?loc=Local&charset=utf8mb4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalized, err := NormalizeMySQLDSN(tt.dsn)
			require.NoError(t, err)

			cfg, err := mysql.ParseDSN(normalized)
			require.NoError(t, err)
			assert.True(t, cfg.ParseTime)
			assert.Equal(t, time.UTC, cfg.Loc)
			assert.Equal(t, "postflow", cfg.DBName)
		})
	}

	t.Run("keeps extra params", func(t *testing.T) {
		normalized, err := NormalizeMySQLDSN("u:p@tcp(db:3306)/postflow?charset=utf8mb4")
		require.NoError(t, err)
		assert.Contains(t, normalized, "charset=utf8mb4")
	})
}
