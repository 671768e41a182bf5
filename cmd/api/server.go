package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mw "github.com/5w1tchy/course-library-api/internal/api/middlewares"
	"github.com/5w1tchy/course-library-api/internal/api/router"
	"github.com/5w1tchy/course-library-api/internal/config"
	"github.com/5w1tchy/course-library-api/internal/logging"
	"github.com/5w1tchy/course-library-api/internal/repository/redisconnect"
	"github.com/5w1tchy/course-library-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/course-library-api/internal/storage/s3"
	"github.com/5w1tchy/course-library-api/internal/store/courselib"
	"github.com/5w1tchy/course-library-api/internal/validate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	configDir := flag.String("config", ".", "directory holding an optional config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir, ".env", "../../.env")
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log, err := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.WithError(err).Fatal("failed to configure logging")
	}
	for _, w := range validate.HardeningWarnings(cfg) {
		log.Warn(w)
	}

	ctx := context.Background()

	db, err := sqlconnect.ConnectDB(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	if cfg.Database.MigrateOnStart {
		if err := sqlconnect.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("failed to run migrations")
		}
	}

	sorts, err := courselib.NewSortRegistry()
	if err != nil {
		log.WithError(err).Fatal("invalid sort mappings")
	}

	rdb, err := redisconnect.Connect(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("redis connection failed")
	}
	if rdb != nil {
		defer rdb.Close()
		log.Info("connected to redis")
	} else {
		log.Warn("redis not configured, rate limiting disabled")
	}

	opts := router.Options{DB: db, Sorts: sorts, Metrics: prometheus.NewRegistry()}
	opts.Metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.Storage.Enabled() {
		store, err := s3.NewClient(ctx, cfg.Storage)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize S3 storage")
		}
		opts.Syllabi = store
		log.WithField("bucket", cfg.Storage.Bucket).Info("syllabus storage configured")
	} else {
		log.Warn("s3 storage not configured, syllabus endpoints disabled")
	}

	var tb, sw mw.Middleware
	if rdb != nil {
		rl := cfg.RateLimit
		tb = mw.NewRedisTokenBucket(rdb, mw.BucketLimits{
			Read:  mw.Rate{PerSecond: rl.TokensPerSecond, Burst: rl.Burst},
			Write: mw.Rate{PerSecond: rl.WriteTokensPerSecond, Burst: rl.WriteBurst},
		}, mw.ClientKey("tb")).Middleware
		sw = mw.NewRedisSlidingWindow(rdb, mw.WindowLimits{
			Read:   rl.WindowLimit,
			Write:  rl.WriteWindowLimit,
			Window: rl.Window,
		}, mw.ClientKey("sw")).Middleware
	}

	handler := mw.Chain(router.Router(opts),
		mw.RequestID,
		mw.Recovery,
		mw.ResponseTime,
		mw.AccessLog,
		mw.Cors(cfg.AllowedOrigins),
		mw.SecurityHeaders(cfg.StrictSecurity),
		mw.HPP(mw.DefaultHPPOptions()),
		tb,
		sw,
		mw.BodySizeLimit(cfg.MaxBodySize),
		mw.Compression,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr).WithField("tls", cfg.TLSEnabled()).Info("server starting")
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", sig.String()).Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	log.Info("server stopped gracefully")
}
