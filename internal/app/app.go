package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/watchparty/server/internal/controller"
	"github.com/watchparty/server/internal/repository/connection/inmemory"
	"github.com/watchparty/server/internal/repository/gormdb"
	videoredis "github.com/watchparty/server/internal/repository/videocache/redis"
	"github.com/watchparty/server/internal/service/auth"
	"github.com/watchparty/server/internal/service/relationship"
	"github.com/watchparty/server/internal/service/session"
	"github.com/watchparty/server/internal/service/video"
	"github.com/watchparty/server/pkg/ctxlogger"
	"github.com/watchparty/server/pkg/redisclient"
)

type AppConfig struct {
	Secret             string `json:"-"`
	Host               string `json:"host"`
	Port               int    `json:"port"`
	LogLevel           string `json:"log_level"`
	Environment        string `json:"environment"`
	DatabaseURL        string `json:"-"`
	RedisHost          string `json:"redis_host"`
	RedisPort          int    `json:"redis_port"`
	RedisPassword      string `json:"-"`
	FrontendURL        string `json:"frontend_url"`
	PublicURL          string `json:"public_url"`
	TokenTTLHours      int    `json:"token_ttl_hours"`
	CacheTTLMinutes    int    `json:"cache_ttl_minutes"`
	YouTubeAPIKey      string `json:"-"`
	YouTubeDailyQuota  int64  `json:"youtube_daily_quota"`
	GoogleClientId     string `json:"-"`
	GoogleClientSecret string `json:"-"`
	GitHubClientId     string `json:"-"`
	GitHubClientSecret string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return fmt.Errorf("secret must be set")
	}
	if cfg.TokenTTLHours < 1 {
		return fmt.Errorf("token ttl must be greater than 0")
	}
	if cfg.CacheTTLMinutes < 1 {
		return fmt.Errorf("cache ttl must be greater than 0")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	db, err := gormdb.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := gormdb.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	dbRepo := gormdb.NewRepo(db, logger)
	cacheRepo := videoredis.NewRepo(rc, time.Duration(cfg.CacheTTLMinutes)*time.Minute, logger)
	connRepo := inmemory.NewRepo()

	authService := auth.NewService(dbRepo, &auth.Config{
		Secret:   cfg.Secret,
		TokenTTL: time.Duration(cfg.TokenTTLHours) * time.Hour,
	}, logger)
	if cfg.GoogleClientId != "" {
		authService.RegisterGoogle(&auth.ProviderConfig{
			ClientId:     cfg.GoogleClientId,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.PublicURL + "/auth/google/callback",
		})
	}
	if cfg.GitHubClientId != "" {
		authService.RegisterGitHub(&auth.ProviderConfig{
			ClientId:     cfg.GitHubClientId,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.PublicURL + "/auth/github/callback",
		})
	}

	// without an API key metadata falls back to scraping and search is off
	var fetcher interface {
		FetchVideo(ctx context.Context, videoId string) (video.Metadata, error)
		SearchVideos(ctx context.Context, query string) ([]video.Metadata, error)
	}
	if cfg.YouTubeAPIKey != "" {
		fetcher, err = video.NewAPIFetcher(cfg.YouTubeAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create youtube fetcher: %w", err)
		}
	} else {
		fetcher = video.NewScrapeFetcher()
	}

	videoService := video.NewService(cacheRepo, fetcher, cfg.YouTubeDailyQuota, logger)
	sessionService := session.NewService(dbRepo, videoService, logger)
	relationshipService := relationship.NewService(dbRepo, logger)

	ctrl := controller.NewController(
		authService,
		sessionService,
		relationshipService,
		videoService,
		connRepo,
		&controller.Config{
			FrontendURL: cfg.FrontendURL,
			IsDev:       cfg.Environment == "development",
		},
		logger,
	)

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: ctrl.Mux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
