package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HOST", "PORT", "STORE_DRIVER", "SEARCH_THRESHOLD", "MAX_UPLOAD_MB", "ALLOW_ORIGINS"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, "127.0.0.1:8082", c.Addr())
	assert.Equal(t, StoreSQLite, c.StoreDriver)
	assert.Equal(t, 0.75, c.SearchThreshold)
	assert.Equal(t, int64(64<<20), c.MaxUploadBytes())
	assert.Equal(t, []string{"*"}, c.AllowOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("SEARCH_THRESHOLD", "2")
	t.Setenv("ALLOW_ORIGINS", "http://a, http://b")
	t.Setenv("REDIS_DB", "3")

	c := Load()
	assert.Equal(t, StoreRedis, c.StoreDriver)
	assert.Equal(t, 0.75, c.SearchThreshold)
	assert.Equal(t, []string{"http://a", "http://b"}, c.AllowOrigins)
	assert.Equal(t, 3, c.RedisDB)
}
