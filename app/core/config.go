package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/reverie-ai/reverie/app/core/srv"
)

// MustLoadBaseConfig reads the toml config at path. Values may reference
// environment variables with ${VAR}, expanded before parsing. An empty
// path falls back to plain environment configuration.
func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	raw = []byte(os.ExpandEnv(string(raw)))

	conf := &CoreConfig{}
	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	return *conf
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr     string      `toml:"addr"`
	Log      Log         `toml:"log"`
	Postgres PGConfig    `toml:"postgres"`
	Redis    RedisConfig `toml:"redis"`
	Site     Site        `toml:"site"`

	Archive       ArchiveConfig       `toml:"archive"`
	ObjectStorage ObjectStorageDriver `toml:"object_storage"`

	Reflect    srv.ReflectConfig    `toml:"reflect"`
	Transcribe srv.TranscribeConfig `toml:"transcribe"`

	Security Security `toml:"security"`

	Journal JournalConfig `toml:"journal"`
	Capture CaptureConfig `toml:"capture"`

	Semaphore SemaphoreConfig `toml:"semaphore"`
}

type Site struct {
	Appid         string `toml:"appid"`
	DefaultAvatar string `toml:"default_avatar"`
}

// ArchiveConfig picks the journal archive driver: postgres (default),
// bolt, or memory.
type ArchiveConfig struct {
	Driver   string `toml:"driver"`
	BoltPath string `toml:"bolt_path"`
}

const (
	ARCHIVE_DRIVER_POSTGRES = "postgres"
	ARCHIVE_DRIVER_BOLT     = "bolt"
	ARCHIVE_DRIVER_MEMORY   = "memory"
)

type ObjectStorageDriver struct {
	Driver string    `toml:"driver"`
	S3     *S3Config `toml:"s3"`
}

type S3Config struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

type Security struct {
	EncryptKey string `toml:"encrypt_key"`
	// FederatedSecret verifies HS256 tokens minted by the identity provider.
	FederatedSecret string `toml:"federated_secret"`
	TokenTTLDays    int    `toml:"token_ttl_days"`
}

func (s Security) TokenTTLDaysOrDefault() int {
	if s.TokenTTLDays <= 0 {
		return 7
	}
	return s.TokenTTLDays
}

type JournalConfig struct {
	// PartitionMaxIdleMinutes controls when untouched in-memory
	// collections get evicted, 0 disables eviction.
	PartitionMaxIdleMinutes int `toml:"partition_max_idle_minutes"`
}

type CaptureConfig struct {
	SessionMaxIdleMinutes int `toml:"session_max_idle_minutes"`
}

func (c CaptureConfig) SessionMaxIdleMinutesOrDefault() int {
	if c.SessionMaxIdleMinutes <= 0 {
		return 30
	}
	return c.SessionMaxIdleMinutes
}

type SemaphoreConfig struct {
	Reflect ReflectSemaphoreConfig `toml:"reflect"`
}

type ReflectSemaphoreConfig struct {
	MaxConcurrency int `toml:"max_concurrency"` // 反思生成最大并发数，默认 10
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("REVERIE_SERVICE_ADDRESS")
	c.Site.Appid = os.Getenv("REVERIE_APPID")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.Redis.FromENV()
	c.Security.EncryptKey = os.Getenv("REVERIE_ENCRYPT_KEY")
	c.Security.FederatedSecret = os.Getenv("REVERIE_FEDERATED_SECRET")
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("REVERIE_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type RedisConfig struct {
	Addr     string `toml:"addr"` // host:port
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

func (r *RedisConfig) FromENV() {
	r.Addr = os.Getenv("REVERIE_REDIS_ADDR")
	r.Password = os.Getenv("REVERIE_REDIS_PASSWORD")
	if dbStr := os.Getenv("REVERIE_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			r.DB = db
		}
	}
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("REVERIE_LOG_LEVEL")
	l.Path = os.Getenv("REVERIE_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
