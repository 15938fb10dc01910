package config

import (
	"os"
	"strconv"
)

// applyEnv layers environment variables over the loaded file.
// Falls back to existing values if variables are not set.
func applyEnv(c *Config) {
	if v := os.Getenv("LODYLAND_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("LODYLAND_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("LODYLAND_CONTENT_DIR"); v != "" {
		c.ContentDir = v
	}
	if v := os.Getenv("LODYLAND_STORAGE"); v != "" {
		c.Storage = v
	}
	if v := os.Getenv("LODYLAND_SQLITE_PATH"); v != "" {
		c.SQLitePath = v
	}
	if v := getEnvInt("LODYLAND_SESSION_TTL_HOURS"); v > 0 {
		c.SessionTTLHours = v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
