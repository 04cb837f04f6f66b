package core

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/reverie-ai/reverie/app/core/srv"
	"github.com/reverie-ai/reverie/app/store/boltstore"
	"github.com/reverie-ai/reverie/app/store/sqlstore"
	"github.com/reverie-ai/reverie/pkg/capture"
	"github.com/reverie-ai/reverie/pkg/journal"
	s3storage "github.com/reverie-ai/reverie/pkg/object-storage/s3"
	"github.com/reverie-ai/reverie/pkg/types"
	"github.com/reverie-ai/reverie/pkg/utils"
)

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores     func() *sqlstore.Provider
	httpClient *http.Client
	httpEngine *gin.Engine

	redis   redis.UniversalClient
	journal *journal.Manager
	capture *capture.Registry
	storage *s3storage.S3

	metrics   *Metrics
	semaphore *SemaphoreManager
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28,   //days
				Compress:   true, // disabled by default
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	core := &Core{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Second * 3},
		metrics:    NewMetrics("reverie", "core"),
		httpEngine: gin.New(),
	}

	utils.SetupIDWorker(1)

	// setup store
	setupSqlStore(core)
	setupRedis(core)

	if cfg.ObjectStorage.S3 != nil {
		s3cfg := cfg.ObjectStorage.S3
		core.storage = s3storage.NewS3Client(s3cfg.Endpoint, s3cfg.Region, s3cfg.Bucket, s3cfg.AccessKey, s3cfg.SecretKey)
	}

	core.srv = srv.SetupSrvs(
		srv.ApplyReflect(cfg.Reflect),
		srv.ApplyTranscribe(cfg.Transcribe),
		// web socket
		srv.ApplyTower(),
	)

	setupJournal(core)
	setupCapture(core)

	core.semaphore = NewSemaphoreManager(core)
	return core
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	// 执行数据库表初始化
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
}

func setupRedis(core *Core) {
	core.redis = redis.NewClient(&redis.Options{
		Addr:     core.cfg.Redis.Addr,
		Password: core.cfg.Redis.Password,
		DB:       core.cfg.Redis.DB,
	})
}

// setupJournal picks the archive driver and wires failure counters.
func setupJournal(core *Core) {
	var archive journal.Archive
	switch core.cfg.Archive.Driver {
	case ARCHIVE_DRIVER_BOLT:
		archive = boltstore.MustSetup(core.cfg.Archive.BoltPath)
	case ARCHIVE_DRIVER_MEMORY:
		archive = journal.NewMemoryArchive()
	default:
		archive = core.Store().JournalArchiveStore()
	}

	core.journal = journal.NewManager(archive, journal.WithHooks(journal.Hooks{
		ArchiveLoadFailed: func(identity string) {
			core.metrics.ArchiveFailureInc("load")
		},
		ArchiveSaveFailed: func(identity string) {
			core.metrics.ArchiveFailureInc("save")
		},
	}))
}

func setupCapture(core *Core) {
	var uploader capture.Uploader
	if core.storage != nil {
		uploader = core.storage
	}

	var publisher capture.Publisher
	if core.srv.Tower() != nil {
		publisher = core.srv.Tower()
	}

	core.capture = capture.NewRegistry(capture.Options{
		Uploader:    uploader,
		Transcriber: core.srv.Transcribe(),
		Publisher:   publisher,
	})
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) DefaultAppid() string {
	if s.cfg.Site.Appid == "" {
		return "reverie"
	}
	return s.cfg.Site.Appid
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

func (s *Core) Journal() *journal.Manager {
	return s.journal
}

func (s *Core) Capture() *capture.Registry {
	return s.capture
}

func (s *Core) FileStorage() *s3storage.S3 {
	return s.storage
}

func (s *Core) Redis() redis.UniversalClient {
	return s.redis
}

func (s *Core) Semaphore() *SemaphoreManager {
	return s.semaphore
}

func (s *Core) Cache() types.Cache {
	return &Cache{redis: s.redis}
}

func (s *Core) EncryptData(data []byte) ([]byte, error) {
	if s.cfg.Security.EncryptKey == "" {
		return data, nil
	}
	return utils.EncryptCFB(data, []byte(s.cfg.Security.EncryptKey))
}

type Cache struct {
	redis redis.UniversalClient
}

func (c *Cache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.redis.Expire(ctx, key, expiration).Err()
}

func (c *Cache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return c.redis.SetEx(ctx, key, value, expiresAt).Err()
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	return c.redis.Get(ctx, key).Result()
}

func (c *Cache) Del(ctx context.Context, key string) error {
	return c.redis.Del(ctx, key).Err()
}
