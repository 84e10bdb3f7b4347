// Command peakly-server starts the Peakly core gRPC server.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/fubl84/peakly-sub001/internal/assistant"
	"github.com/fubl84/peakly-sub001/internal/config"
	"github.com/fubl84/peakly-sub001/internal/metrics"
	"github.com/fubl84/peakly-sub001/internal/migrate"
	"github.com/fubl84/peakly-sub001/internal/repository/postgres"
	grpcserver "github.com/fubl84/peakly-sub001/internal/server/grpc"
	"github.com/fubl84/peakly-sub001/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the gRPC server.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(os.Args[1:], ".env", logger)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.Bool("tls", cfg.TLS()),
	)

	var opts []grpc.ServerOption
	if cfg.TLS() {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			logger.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(creds))
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ver, err := migrate.Up(ctx, cfg.DSN, logger)
	if err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}
	logger.Info("schema ready", zap.Int64("version", ver))

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	ingredients := postgres.NewIngredientRepo(db)
	recipes := postgres.NewRecipeRepo(db)
	plans := postgres.NewMealPlanRepo(db)
	paths := postgres.NewPathRepo(db)
	enrollments := postgres.NewEnrollmentRepo(db)
	shopping := postgres.NewShoppingRepo(db)

	// Services
	svc := grpcserver.Services{
		Nutrition:   service.NewNutritionCache(ingredients, recipes, nil, logger.Named("nutrition")),
		Slots:       service.NewSlotService(plans, recipes, cfg.SuggestLimit, nil, logger.Named("slots")),
		Content:     service.NewContentService(paths, enrollments, nil),
		Enrollments: service.NewEnrollmentService(enrollments, nil, logger.Named("enrollment")),
		Shopping:    service.NewShoppingService(shopping, nil),
	}
	if cfg.Assist {
		svc.Assistant = assistant.New(assistant.TopPick{}, logger.Named("assistant"))
	}
	app := grpcserver.New(svc, []byte(cfg.JWTKey), nil)

	// gRPC server with interceptors
	sink := metrics.NewMemory()
	opts = append(opts, grpc.ChainUnaryInterceptor(
		grpcserver.RecoverUnary(logger),
		grpcserver.LoggingUnary(logger),
		grpcserver.MetricsUnary(sink),
		app.AuthUnary(),
	))
	s := grpc.NewServer(opts...)
	grpcserver.RegisterCoreServer(s, app)

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(grpcserver.ServiceName, healthpb.HealthCheckResponse_SERVING)
	if cfg.Dev {
		reflection.Register(s)
	}

	// Listen
	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- s.Serve(lis)
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		hs.Shutdown()
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	for _, st := range sink.Snapshot() {
		logger.Info("rpc stats",
			zap.String("method", st.Method),
			zap.String("code", st.Code),
			zap.Int64("count", st.Count),
			zap.Duration("total", st.Total),
			zap.Duration("max", st.Max),
		)
	}
	logger.Info("shutdown complete")
}
