// Command server wires the course-application service: stores, blob storage,
// signers, notification worker, and the HTTP surface. Business logic lives in
// the internal services; main only assembles and supervises.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"admitly/internal/application"
	applicationhandler "admitly/internal/application/handler"
	appmetrics "admitly/internal/application/metrics"
	"admitly/internal/blob"
	blobhandler "admitly/internal/blob/handler"
	"admitly/internal/document"
	documenthandler "admitly/internal/document/handler"
	docmetrics "admitly/internal/document/metrics"
	httpapi "admitly/internal/http"
	jwttoken "admitly/internal/jwt_token"
	"admitly/internal/notification"
	"admitly/internal/platform/config"
	"admitly/internal/platform/httpserver"
	"admitly/internal/platform/logger"
	"admitly/internal/platform/postgres"
	platformredis "admitly/internal/platform/redis"
	"admitly/internal/profile"
	profilehandler "admitly/internal/profile/handler"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when a DSN is configured, in-memory otherwise.
	var (
		profileStore     profile.Store
		applicationStore application.Store
		documentStore    document.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		profileStore = profile.NewPostgres(db)
		applicationStore = application.NewPostgres(db)
		documentStore = document.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		profileStore = profile.NewInMemoryStore()
		applicationStore = application.NewInMemoryStore()
		documentStore = document.NewInMemoryStore()
		log.Warn("no postgres DSN configured, state is in-memory only")
	}

	// Blob storage and the download signer. Redis-backed tokens are
	// revocable; without Redis the stateless HMAC signer takes over.
	blobStore, err := blob.NewDiskStore(cfg.BlobRoot)
	if err != nil {
		log.Error("blob root unavailable", "error", err)
		os.Exit(1)
	}

	var signer interface {
		blob.Signer
		blob.Resolver
	}
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		signer = blob.NewRedisSigner(redisClient.Client, cfg.DownloadBaseURL, cfg.DownloadTTL)
		log.Info("using redis download signer")
	} else {
		signer = blob.NewHMACSigner(cfg.JWTSigningKey, cfg.DownloadBaseURL, cfg.DownloadTTL)
		log.Info("using hmac download signer")
	}

	// Notification sink: Kafka when brokers are configured, slog otherwise.
	var sink notification.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := notification.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("using kafka notification sink", "topic", cfg.KafkaTopic)
	} else {
		sink = notification.NewSlogSink(log)
	}
	dispatcher := notification.NewAsyncDispatcher(sink, log)

	// Services.
	profileService := profile.NewService(profileStore, cfg.SubmitThreshold, log)
	documentService := document.NewService(
		documentStore, applicationStore, blobStore, signer,
		docmetrics.New(), cfg.MaxUploadBytes, log,
	)
	applicationService := application.NewService(
		applicationStore, profileService, documentService, dispatcher,
		appmetrics.New(), cfg.SubmitThreshold, log,
	)

	jwtService := jwttoken.NewService(cfg.JWTSigningKey, "admitly")

	router := httpapi.NewRouter(httpapi.Handlers{
		Applications: applicationhandler.New(applicationService, documentService, log),
		Documents:    documenthandler.New(documentService, cfg.MaxUploadBytes, log),
		Profiles:     profilehandler.New(profileService, log),
		Downloads:    blobhandler.New(signer, blobStore, log),
	}, jwtService, log)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting admitly", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
