package models

import "time"

type Config struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// "postgres" or "sqlite"
	DBDriver string `yaml:"db_driver" env:"DB_DRIVER"`

	// Primary (write) database
	DBHost     string `yaml:"db_host" env:"DB_HOST"`
	DBPort     string `yaml:"db_port" env:"DB_PORT"`
	DBUser     string `yaml:"db_user" env:"DB_USER"`
	DBName     string `yaml:"db_name" env:"DB_NAME"`
	DBPassword string `yaml:"db_password" env:"DB_PASSWORD"`

	// Replica (read) database
	DBReplicaHost     string `yaml:"db_replica_host" env:"DB_REPLICA_HOST"`
	DBReplicaPort     string `yaml:"db_replica_port" env:"DB_REPLICA_PORT"`
	DBReplicaUser     string `yaml:"db_replica_user" env:"DB_REPLICA_USER"`
	DBReplicaName     string `yaml:"db_replica_name" env:"DB_REPLICA_NAME"`
	DBReplicaPassword string `yaml:"db_replica_password" env:"DB_REPLICA_PASSWORD"`

	SqlitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`

	CacheAddrs    []string `yaml:"cache_addrs" env:"CACHE_ADDRS" envSeparator:","`
	CachePassword string   `yaml:"cache_password" env:"CACHE_PASSWORD"`

	ServerHost     string `yaml:"server_host" env:"SERVER_HOST"`
	ServerPort     string `yaml:"server_port" env:"SERVER_PORT"`
	ServerHttpPort string `yaml:"server_http_port" env:"SERVER_HTTP_PORT"`
	HostName       string `yaml:"host_name" env:"HOST_NAME"`

	EtcdEndpoints []string `yaml:"etcd_endpoints" env:"ETCD_ENDPOINTS" envSeparator:","`

	Kafka KafkaConfig `yaml:"kafka" envPrefix:"KAFKA_"`

	// base64 of the raw ed25519 public key used to verify admin tokens
	JWTPublicKey string `yaml:"jwt_public_key" env:"JWT_PUBLIC_KEY"`
	JWTIssuer    string `yaml:"jwt_issuer" env:"JWT_ISSUER"`
	JWTAudience  string `yaml:"jwt_audience" env:"JWT_AUDIENCE"`

	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel  string `yaml:"gemini_model" env:"GEMINI_MODEL"`

	// increments allowed per second for one peer
	IncrementRate  float64 `yaml:"increment_rate" env:"INCREMENT_RATE"`
	IncrementBurst int     `yaml:"increment_burst" env:"INCREMENT_BURST"`

	// how long to keep serving after health turns to down
	DrainDelay time.Duration `yaml:"drain_delay" env:"DRAIN_DELAY"`
}

type KafkaConfig struct {
	BootStrapServers string `yaml:"bootstrap_servers" env:"BOOTSTRAP_SERVERS"`
	GroupID          string `yaml:"group_id" env:"GROUP_ID"`
	Topic            string `yaml:"topic" env:"TOPIC"`
	OffsetReset      string `yaml:"offset_reset" env:"OFFSET_RESET"`
}

type Post struct {
	CachedPost
	ViewCount int64 `json:"view_count"`
	ReadCount int64 `json:"read_count"`
}

// CachedPost is the part of a post that changes only on edit.
// Counters are cached separately.
type CachedPost struct {
	Id             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Category       string    `json:"category"`
	ImageURL       string    `json:"image_url"`
	ReadTime       int64     `json:"read_time"`
	SEOTitle       string    `json:"seo_title"`
	SEODescription string    `json:"seo_description"`
	SEOKeywords    []string  `json:"seo_keywords"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CachedCounter struct {
	Id    string
	Views int64
	Reads int64
}

type DashboardStats struct {
	TotalPosts int64
	TotalViews int64
	TotalReads int64
}
