package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "50051", cfg.ServerPort)
	assert.Equal(t, 5*time.Second, cfg.DrainDelay)
	assert.Equal(t, float64(5), cfg.IncrementRate)
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "post_service.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_driver: sqlite
sqlite_path: /tmp/posts.db
server_port: "6000"
drain_delay: 1s
kafka:
  bootstrap_servers: kafka:9092
`), 0o600))
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("CACHE_ADDRS", "r1:6379,r2:6379")
	t.Setenv("KAFKA_TOPIC", "posts")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/posts.db", cfg.SqlitePath)
	assert.Equal(t, "7000", cfg.ServerPort)
	assert.Equal(t, time.Second, cfg.DrainDelay)
	assert.Equal(t, []string{"r1:6379", "r2:6379"}, cfg.CacheAddrs)
	assert.Equal(t, "kafka:9092", cfg.Kafka.BootStrapServers)
	assert.Equal(t, "posts", cfg.Kafka.Topic)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "mysql")
	_, err := LoadConfig("")
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("INCREMENT_RATE", "0")
	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestDecodePublicKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	key, err := decodePublicKey(base64.StdEncoding.EncodeToString(pub))
	require.NoError(t, err)
	assert.Equal(t, pub, key)

	_, err = decodePublicKey("%%%")
	assert.Error(t, err)
	_, err = decodePublicKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
