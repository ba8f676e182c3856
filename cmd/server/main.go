package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/watchparty/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	secret = configVar[string]{
		envKey:       "SERVER_SECRET",
		flagKey:      "secret",
		defaultValue: "",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	environment = configVar[string]{
		envKey:       "SERVER_ENV",
		flagKey:      "environment",
		defaultValue: "development",
	}
	databaseURL = configVar[string]{
		envKey:       "DATABASE_URL",
		flagKey:      "database-url",
		defaultValue: "watchparty.db",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
	frontendURL = configVar[string]{
		envKey:       "FRONTEND_URL",
		flagKey:      "frontend-url",
		defaultValue: "http://localhost:3000",
	}
	publicURL = configVar[string]{
		envKey:       "PUBLIC_URL",
		flagKey:      "public-url",
		defaultValue: "http://localhost:8080",
	}
	tokenTTLHours = configVar[int]{
		envKey:       "TOKEN_TTL_HOURS",
		flagKey:      "token-ttl-hours",
		defaultValue: 24 * 7,
	}
	cacheTTLMinutes = configVar[int]{
		envKey:       "CACHE_TTL_MINUTES",
		flagKey:      "cache-ttl-minutes",
		defaultValue: 60 * 24,
	}
	youtubeAPIKey = configVar[string]{
		envKey:       "YOUTUBE_API_KEY",
		flagKey:      "youtube-api-key",
		defaultValue: "",
	}
	youtubeDailyQuota = configVar[int]{
		envKey:       "YOUTUBE_DAILY_QUOTA",
		flagKey:      "youtube-daily-quota",
		defaultValue: 10000,
	}
	googleClientId = configVar[string]{
		envKey:       "GOOGLE_CLIENT_ID",
		flagKey:      "google-client-id",
		defaultValue: "",
	}
	googleClientSecret = configVar[string]{
		envKey:       "GOOGLE_CLIENT_SECRET",
		flagKey:      "google-client-secret",
		defaultValue: "",
	}
	githubClientId = configVar[string]{
		envKey:       "GITHUB_CLIENT_ID",
		flagKey:      "github-client-id",
		defaultValue: "",
	}
	githubClientSecret = configVar[string]{
		envKey:       "GITHUB_CLIENT_SECRET",
		flagKey:      "github-client-secret",
		defaultValue: "",
	}
)

func bindString(v configVar[string], usage string) {
	pflag.String(v.flagKey, v.defaultValue, usage)
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func bindInt(v configVar[int], usage string) {
	pflag.Int(v.flagKey, v.defaultValue, usage)
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	bindString(secret, "Server secret used to sign bearer tokens")
	bindString(host, "Server host")
	bindInt(port, "Server port")
	bindString(logLevel, "Logging level")
	bindString(environment, "Deployment environment")
	bindString(databaseURL, "Postgres URL or sqlite path")
	bindString(redisHost, "Redis host")
	bindInt(redisPort, "Redis port")
	bindString(redisPassword, "Redis password")
	bindString(frontendURL, "Frontend origin for CORS and oauth callbacks")
	bindString(publicURL, "Public base URL of this server")
	bindInt(tokenTTLHours, "Bearer token lifetime in hours")
	bindInt(cacheTTLMinutes, "Video metadata cache lifetime in minutes")
	bindString(youtubeAPIKey, "YouTube Data API key")
	bindInt(youtubeDailyQuota, "Daily YouTube lookup quota")
	bindString(googleClientId, "Google OAuth client id")
	bindString(googleClientSecret, "Google OAuth client secret")
	bindString(githubClientId, "GitHub OAuth client id")
	bindString(githubClientSecret, "GitHub OAuth client secret")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	return &app.AppConfig{
		Secret:             viper.GetString(secret.flagKey),
		Host:               viper.GetString(host.flagKey),
		Port:               viper.GetInt(port.flagKey),
		LogLevel:           viper.GetString(logLevel.flagKey),
		Environment:        viper.GetString(environment.flagKey),
		DatabaseURL:        viper.GetString(databaseURL.flagKey),
		RedisHost:          viper.GetString(redisHost.flagKey),
		RedisPort:          viper.GetInt(redisPort.flagKey),
		RedisPassword:      viper.GetString(redisPassword.flagKey),
		FrontendURL:        viper.GetString(frontendURL.flagKey),
		PublicURL:          viper.GetString(publicURL.flagKey),
		TokenTTLHours:      viper.GetInt(tokenTTLHours.flagKey),
		CacheTTLMinutes:    viper.GetInt(cacheTTLMinutes.flagKey),
		YouTubeAPIKey:      viper.GetString(youtubeAPIKey.flagKey),
		YouTubeDailyQuota:  int64(viper.GetInt(youtubeDailyQuota.flagKey)),
		GoogleClientId:     viper.GetString(googleClientId.flagKey),
		GoogleClientSecret: viper.GetString(googleClientSecret.flagKey),
		GitHubClientId:     viper.GetString(githubClientId.flagKey),
		GitHubClientSecret: viper.GetString(githubClientSecret.flagKey),
	}
}

func main() {
	ctx := context.Background()

	godotenv.Load()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
