package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"veriport/pkg/platform/tx"

	"veriport/internal/audit"
	"veriport/internal/authority"
	"veriport/internal/jwttoken"
	"veriport/internal/notify"
	"veriport/internal/platform/config"
	"veriport/internal/platform/httpserver"
	"veriport/internal/platform/logger"
	"veriport/internal/platform/metrics"
	"veriport/internal/platform/postgres"
	"veriport/internal/platform/redis"
	"veriport/internal/platform/tracer"
	"veriport/internal/presentation"
	presentationhandler "veriport/internal/presentation/handler"
	"veriport/internal/registry"
	registryhandler "veriport/internal/registry/handler"
	"veriport/internal/request"
	requesthandler "veriport/internal/request/handler"
	"veriport/internal/sharedcred"
	"veriport/internal/token"
	httptransport "veriport/internal/transport/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		return
	}
	if db != nil {
		defer db.Close()
	} else {
		log.Warn("no DATABASE_URL configured, running on in-memory stores")
	}

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		return
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Stores. Every interface has an in-memory fallback so the gateway can run
	// without infrastructure for local development.
	var (
		companies  registry.CompanyStore
		verifiers  registry.VerifierStore
		issuers    registry.IssuerStore
		holderApps registry.HolderAppStore
		users      registry.UserStore
		requests   request.Store
		shared     sharedcred.Store
		runner     tx.Runner
	)
	if db != nil {
		regStore := registry.NewPostgresStore(db)
		companies = regStore
		verifiers = regStore.Verifiers()
		issuers = regStore.Issuers()
		holderApps = regStore.HolderApps()
		users = regStore.Users()
		requests = request.NewPostgresStore(db)
		shared = sharedcred.NewPostgresStore(db)
		runner = tx.NewSQLRunner(db)
	} else {
		regStore := registry.NewInMemoryStore()
		companies = regStore
		verifiers = regStore.Verifiers()
		issuers = regStore.Issuers()
		holderApps = regStore.HolderApps()
		users = regStore.Users()
		requests = request.NewInMemoryStore()
		shared = sharedcred.NewInMemoryStore()
		runner = tx.NoopRunner{}
	}

	// Audit trail. Kafka when configured, in-memory otherwise; either way the
	// pipeline only ever talks to the fail-open publisher.
	var sink audit.Sink
	if cfg.Kafka.Brokers != "" {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			return
		}
		sink = kafkaSink
	} else {
		log.Warn("no KAFKA_BROKERS configured, audit events stay in memory")
		sink = audit.NewMemorySink()
	}
	defer sink.Close()

	publisher := audit.NewPublisher(0, log)
	worker := audit.NewWorker(publisher, sink, log)

	var notifier notify.Notifier
	if rdb != nil {
		notifier = notify.NewRedisNotifier(rdb)
	} else {
		log.Warn("no REDIS_URL configured, verdict notifications stay in memory")
		notifier = notify.NewMemoryNotifier()
	}

	authorityClient := authority.NewClient(cfg.Authority, log, m,
		authority.WithTracer(tracer.NewOTel()))
	custodian := token.NewCustodian(verifiers, log, m)
	recorder := presentation.NewRecorder(issuers, users, shared, runner, log, m)

	presentationService := presentation.NewService(requests, verifiers, custodian,
		authorityClient, recorder, notifier, publisher, log, m, tracer.NewOTel())
	registryService := registry.NewService(companies, verifiers, issuers, holderApps,
		users, authorityClient, log)
	requestService := request.NewService(requests, verifiers, issuers, holderApps,
		custodian, authorityClient, log)

	tokens := jwttoken.NewService(cfg.Server.JWTSigningKey, "veriport")
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Presentation: presentationhandler.New(presentationService, log),
		Registry:     registryhandler.New(registryService, log),
		Requests:     requesthandler.New(requestService, log),
		Admin:        tokens,
		Tokens:       tokens,
		AdminSecret:  cfg.Server.AdminSecret,
		DB:           db,
		Redis:        rdb,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return worker.Run(groupCtx)
	})
	group.Go(func() error {
		log.Info("starting veriport", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown with error", "error", err)
	}
}
