package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/stadslucht/pm25-extract/internal/cache"
	"github.com/stadslucht/pm25-extract/internal/ckan"
	"github.com/stadslucht/pm25-extract/internal/config"
	"github.com/stadslucht/pm25-extract/internal/pipeline"
	"github.com/stadslucht/pm25-extract/internal/report"
	"github.com/stadslucht/pm25-extract/internal/scheduler"
)

// extractJob assembles a fresh writer and pipeline per run so repeated
// scheduled runs never share report state.
type extractJob struct {
	cfg    *config.AppConfig
	store  cache.Store
	client *ckan.Client
}

func (j *extractJob) RunOnce(ctx context.Context) error {
	writer := report.NewWriter(j.cfg.OutputDir, j.cfg.Name)
	p := pipeline.New(j.cfg.Windows, j.cfg.Areas, cache.New(j.store), j.client, writer)

	rep, err := p.Run(ctx)
	if err != nil {
		return err
	}
	if len(rep.Errors) > 0 {
		log.Printf("main: run completed with %d unit errors (skipped units)", len(rep.Errors))
	}
	log.Printf("main: run produced %d stats tables", len(rep.Tables))
	return nil
}

func main() {
	// Load configuration; missing secrets abort before any processing.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound datastore calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var store cache.Store
	switch cfg.CacheBackend {
	case "redis":
		store = cache.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
		}))
	default:
		store = cache.NewFileStore(cfg.OutputDir)
	}

	job := &extractJob{
		cfg:    cfg,
		store:  store,
		client: ckan.NewClient(httpClient, cfg.BaseURL, cfg.ResourceID, cfg.APIToken),
	}

	if err := job.RunOnce(context.Background()); err != nil {
		log.Fatalf("extraction failed: %v", err)
	}

	if cfg.ExtractInterval <= 0 {
		return
	}

	// Periodic refresh mode: keep re-running until interrupted.
	sched := scheduler.New(job, cfg.ExtractInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}
