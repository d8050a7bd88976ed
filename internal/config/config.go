package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string
	MaxUploadMB  int

	StoreDriver   string // memory | sqlite | redis
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	SearchThreshold float64
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "64"))
	rdb, _ := strconv.Atoi(getenv("REDIS_DB", "0"))
	thr, err := strconv.ParseFloat(getenv("SEARCH_THRESHOLD", "0.75"), 64)
	if err != nil || thr <= 0 || thr > 1 {
		thr = 0.75
	}

	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         port,
		AllowOrigins: origins,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFile:      getenv("LOG_FILE", "logs/appliance-recon.log"),
		MaxUploadMB:  mb,

		StoreDriver:   strings.ToLower(getenv("STORE_DRIVER", StoreSQLite)),
		DBPath:        getenv("DB_PATH", "data/inventory.db"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       rdb,
		RedisPrefix:   getenv("REDIS_PREFIX", "inventory:"),

		SearchThreshold: thr,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// MaxUploadBytes: лимит тела запроса.
func (c Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
