// Command tablero serves a read-only data exploration dashboard over a
// MySQL or Postgres schema and a directory of CSV/Parquet datasets.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tablero-dev/tablero/internal/config"
	"github.com/tablero-dev/tablero/internal/database"
	"github.com/tablero-dev/tablero/internal/explorer"
	"github.com/tablero-dev/tablero/internal/filestore"
	"github.com/tablero-dev/tablero/internal/filestore/minio"
	"github.com/tablero-dev/tablero/internal/logger"
	"github.com/tablero-dev/tablero/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.New(nil).Errorf("tablero exited: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	creds := cfg.Credentials()
	dbCfg := database.DefaultConfig(
		database.Driver(cfg.Driver),
		creds.Host, creds.Port, creds.Database, creds.User, creds.Password,
	)

	opts := explorer.Options{
		Database:    dbCfg,
		DatasetsDir: cfg.Datasets.Dir,
		Logger:      log,
	}

	if cfg.MinioEnabled() {
		store, err := minio.New(ctx, &filestore.Config{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			// The bucket is an optional extra source; local datasets
			// still work without it.
			log.ErrorWith("object store unavailable, serving local datasets only", err, nil)
		} else {
			opts.Store = store
			defer func() { _ = store.Close() }()
		}
	}

	exp := explorer.New(opts)
	defer exp.Close()

	handler := ui.NewHandler(exp, ui.ConnSummary{
		Driver:   cfg.Driver,
		Host:     creds.Host,
		Port:     creds.Port,
		Database: creds.Database,
		User:     creds.User,
		URL:      dbCfg.RedactedURL(),
	}, log)

	srv := ui.NewServer(ui.ServerConfig{
		Addr:    cfg.Server.Addr,
		Handler: handler,
		Logger:  log,
	})
	return srv.Serve(ctx)
}
