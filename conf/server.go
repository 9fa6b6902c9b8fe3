package conf

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConf struct {
	Env      string // dev|prod
	HTTPAddr string
	LogLevel string

	CORSOrigins []string

	SummaryCacheTTL time.Duration
	EvalConcurrency int

	AWSRegion     string
	ArchiveBucket string // empty disables archiving
}

func ServerConfFromEnv() ServerConf {
	return ServerConf{
		Env:             envOr("ENV", "dev"),
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		CORSOrigins:     csvOr("CORS_ORIGINS", "http://localhost:3000"),
		SummaryCacheTTL: durationOr("SUMMARY_CACHE_TTL", 5*time.Second),
		EvalConcurrency: intOr("EVAL_CONCURRENCY", 8),
		AWSRegion:       envOr("AWS_REGION", "eu-central-1"),
		ArchiveBucket:   os.Getenv("ARCHIVE_BUCKET"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func intOr(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func durationOr(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
