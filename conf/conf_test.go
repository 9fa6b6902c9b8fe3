package conf_test

import (
	"context"
	"testing"
	"time"

	"github.com/programme-lv/schein/conf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfDefaults(t *testing.T) {
	for _, k := range []string{"ENV", "HTTP_ADDR", "LOG_LEVEL", "CORS_ORIGINS", "SUMMARY_CACHE_TTL", "EVAL_CONCURRENCY", "AWS_REGION", "ARCHIVE_BUCKET"} {
		t.Setenv(k, "")
	}
	c := conf.ServerConfFromEnv()
	assert.Equal(t, "dev", c.Env)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORSOrigins)
	assert.Equal(t, 5*time.Second, c.SummaryCacheTTL)
	assert.Equal(t, 8, c.EvalConcurrency)
	assert.Empty(t, c.ArchiveBucket)
}

func TestServerConfFromEnv(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SUMMARY_CACHE_TTL", "1m")
	t.Setenv("EVAL_CONCURRENCY", "-3")
	t.Setenv("ARCHIVE_BUCKET", "schein-archive")

	c := conf.ServerConfFromEnv()
	assert.Equal(t, "prod", c.Env)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.Equal(t, time.Minute, c.SummaryCacheTTL)
	assert.Equal(t, 8, c.EvalConcurrency)
	assert.Equal(t, "schein-archive", c.ArchiveBucket)
}

func TestPgConnStrLocal(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_PW", "secret")
	t.Setenv("POSTGRES_USER", "schein")
	t.Setenv("POSTGRES_DB", "schein")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("POSTGRES_SSLMODE", "")

	dsn, err := conf.GetPgConnStrFromEnv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "host=localhost port=5432 user=schein password=secret dbname=schein sslmode=disable", dsn)
}
