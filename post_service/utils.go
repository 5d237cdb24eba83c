package main

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/MinhaulMahmud/PersonalBlog/platform/config"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/assistant"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/cachedRepo"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/changefeed"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/db"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/events"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/models"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/postRepo"
	"go.uber.org/zap"
)

func defaultConfig() models.Config {
	hostName, _ := os.Hostname()
	return models.Config{
		LogLevel:       "info",
		DBDriver:       "postgres",
		SqlitePath:     "blog.db",
		ServerPort:     "50051",
		ServerHttpPort: "8080",
		HostName:       hostName,
		JWTIssuer:      "auth",
		JWTAudience:    "post_service",
		GeminiModel:    assistant.DefaultModel,
		IncrementRate:  5,
		IncrementBurst: 10,
		DrainDelay:     5 * time.Second,
	}
}

// LoadConfig layers .env, the optional YAML file at path and the environment
// over the defaults.
func LoadConfig(path string) (models.Config, error) {
	cfg := defaultConfig()
	if err := config.Load(path, &cfg); err != nil {
		return models.Config{}, err
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return models.Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.IncrementRate <= 0 || cfg.IncrementBurst <= 0 {
		return models.Config{}, fmt.Errorf("increment rate and burst must be positive")
	}
	return cfg, nil
}

func decodePublicKey(b64 string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode JWT_PUBLIC_KEY: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("JWT_PUBLIC_KEY must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

func openPersistence(cfg models.Config, logger *zap.Logger) (postRepo.PersistenceDB, error) {
	if cfg.DBDriver == "sqlite" {
		conn, err := db.InitSqlite(cfg.SqlitePath, logger)
		if err != nil {
			return nil, err
		}
		return postRepo.NewSqliteRepo(conn, logger), nil
	}
	primaryDB, replicaDB, err := db.InitDBConnections(cfg, logger)
	if err != nil {
		return nil, err
	}
	return postRepo.NewPostgresRepo(primaryDB, replicaDB, logger), nil
}

// buildDeps wires every backing service. Redis, Kafka, Gemini and the admin
// key are optional; without them the service runs on in-process fallbacks.
func buildDeps(ctx context.Context, cfg models.Config, logger *zap.Logger) (serviceDeps, *events.DashboardWriter, error) {
	var deps serviceDeps
	var err error

	deps.presistance, err = openPersistence(cfg, logger)
	if err != nil {
		return serviceDeps{}, nil, err
	}

	deps.cache = noCache{}
	deps.feed = changefeed.NewLocalFeed(logger)
	deps.limiter = newLocalLimiter(cfg.IncrementRate, cfg.IncrementBurst)
	if len(cfg.CacheAddrs) > 0 {
		redisRepo, err := cachedRepo.NewRedisRepo(cfg.CacheAddrs, cfg.CachePassword, logger)
		if err != nil {
			logger.Warn("Error in Loading Redis, using in-process cache and feed", zap.Error(err))
		} else {
			deps.cache = redisRepo
			deps.feed = changefeed.NewRedisFeed(redisRepo.Client(), logger)
			deps.limiter = &redisLimiter{
				client:    redisRepo.Client(),
				perSecond: cfg.IncrementRate,
				burst:     cfg.IncrementBurst,
				logger:    logger,
			}
		}
	}

	deps.hub = events.NewHub(logger)
	var dashboard *events.DashboardWriter
	if cfg.Kafka.BootStrapServers != "" {
		producer, err := events.NewProducer(cfg.Kafka, logger)
		if err != nil {
			deps.presistance.Close()
			return serviceDeps{}, nil, err
		}
		dashboard, err = events.NewDashboardWriter(cfg.Kafka, deps.hub, logger)
		if err != nil {
			producer.Close()
			deps.presistance.Close()
			return serviceDeps{}, nil, err
		}
		deps.events = producer
	} else {
		deps.events = events.NewLocalPublisher(deps.hub)
	}

	if cfg.GeminiAPIKey != "" {
		gen, err := assistant.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("AI assistant disabled", zap.Error(err))
		} else {
			deps.assistant = assistant.New(gen)
		}
	}

	deps.auth = &authenticator{issuer: cfg.JWTIssuer, audience: cfg.JWTAudience}
	if cfg.JWTPublicKey != "" {
		key, err := decodePublicKey(cfg.JWTPublicKey)
		if err != nil {
			deps.presistance.Close()
			return serviceDeps{}, nil, err
		}
		deps.auth.publicKey = key
	} else {
		logger.Warn("JWT_PUBLIC_KEY is not set, admin methods are disabled")
	}
	return deps, dashboard, nil
}

// noCache is used when no redis is configured; every read is a miss.
type noCache struct{}

func (noCache) CachePost(context.Context, models.Post) error { return nil }

func (noCache) GetPost(context.Context, string) (models.Post, error) {
	return models.Post{}, cachedRepo.ErrCacheMiss
}

func (noCache) DeletePost(context.Context, string) error                { return nil }
func (noCache) SetCounters(context.Context, models.CachedCounter) error { return nil }
func (noCache) Close()                                                  {}

func (ps *postService) close() {
	// mark service as OFF
	ps.serviceOFF.Store(true)
	if ps.healthServer != nil {
		ps.healthServer.Shutdown()
	}
	if ps.registration != nil {
		ps.registration.Close()
	}

	// wait until state reflected in the load balancer
	time.Sleep(ps.config.DrainDelay)

	// ends live streams
	ps.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if ps.httpServer != nil {
		if err := ps.httpServer.Shutdown(ctx); err != nil {
			ps.logger.Error("Error in Closing httpServer", zap.Error(err))
		} else {
			ps.logger.Info("HTTP Server Closed Successfully")
		}
	}
	if ps.grpcServer != nil {
		ps.grpcServer.GracefulStop()
	}

	ps.background.Wait()
	if ps.events != nil {
		ps.events.Close()
	}
	if ps.cache != nil {
		ps.cache.Close()
	}
	if ps.presistanceDB != nil {
		ps.presistanceDB.Close()
	}
	// service Closed finally
}
