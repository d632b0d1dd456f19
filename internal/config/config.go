package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	ActivitiesURL  string
	SpendURL       string
	ConversionsURL string
	SinkURL        string
	SinkSecret     string
	Port           string
	HTTPTimeout    time.Duration
	LogLevel       slog.Level
	AllowedOrigins []string
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return Config{
		ActivitiesURL:  os.Getenv("ACTIVITIES_API_URL"),
		SpendURL:       os.Getenv("SPEND_API_URL"),
		ConversionsURL: os.Getenv("CONVERSIONS_API_URL"),
		SinkURL:        os.Getenv("SINK_URL"),
		SinkSecret:     os.Getenv("SINK_SECRET"),
		Port:           envOr("PORT", "8080"),
		HTTPTimeout:    to,
		LogLevel:       lvl,
		AllowedOrigins: origins,
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
