package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/programme-lv/schein/conf"
	"github.com/programme-lv/schein/criteria"
	"github.com/programme-lv/schein/http"
	"github.com/programme-lv/schein/logger"
	"github.com/programme-lv/schein/s3bucket"
	"github.com/programme-lv/schein/summary"
	summaryhttp "github.com/programme-lv/schein/summary/http"
	"github.com/programme-lv/schein/summary/repo"
	"github.com/programme-lv/schein/summary/srvc"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "error", err)
	}

	cfg := conf.ServerConfFromEnv()
	log := logger.New(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgConnStr, err := conf.GetPgConnStrFromEnv(ctx)
	if err != nil {
		log.Error("failed to build postgres connection string", "error", err)
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, pgConnStr)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// without a bucket the archive endpoint answers 503
	var archive srvc.S3BucketFacade
	if cfg.ArchiveBucket != "" {
		bucket, err := s3bucket.NewS3Bucket(ctx, cfg.AWSRegion, cfg.ArchiveBucket)
		if err != nil {
			log.Error("failed to create archive bucket", "error", err)
			os.Exit(1)
		}
		archive = bucket
	}

	summarySrvc := srvc.NewSummarySrvc(
		repo.NewSummaryPgRepo(pool),
		archive,
		criteria.DefaultRegistry(),
		summary.WithConcurrency(cfg.EvalConcurrency),
	)

	server := http.NewHttpServer(cfg,
		summaryhttp.NewSummaryHttpHandler(summarySrvc, cfg.SummaryCacheTTL),
	)
	if err := server.Start(ctx); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
