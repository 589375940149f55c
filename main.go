package main

import (
	"context"
	"net/http"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VaDeloitte/test-project-sub002/common"
	"github.com/VaDeloitte/test-project-sub002/common/client"
	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/common/graceful"
	"github.com/VaDeloitte/test-project-sub002/common/logger"
	"github.com/VaDeloitte/test-project-sub002/middleware"
	"github.com/VaDeloitte/test-project-sub002/monitor"
	rcontroller "github.com/VaDeloitte/test-project-sub002/relay/controller"
	"github.com/VaDeloitte/test-project-sub002/relay/media"
	"github.com/VaDeloitte/test-project-sub002/relay/tokenizer"
	"github.com/VaDeloitte/test-project-sub002/router"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	common.Init()
	logger.SetupLogger()

	// Setup enhanced logger with alertPusher integration
	logger.SetupEnhancedLogger(ctx)

	logger.Logger.Info("chat relay started", zap.String("version", common.Version))

	if config.GinMode != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	port := config.ServerPort
	if port == "" {
		port = strconv.Itoa(*common.Port)
	}

	// the vocabulary must load before the first request; a missing one is fatal
	tok := tokenizer.New(config.TiktokenEncoding)
	if err := tok.Init(); err != nil {
		logger.Logger.Fatal("failed to load tokenizer", zap.String("encoding", config.TiktokenEncoding), zap.Error(err))
	}

	if err := common.InitRedisClient(); err != nil {
		logger.Logger.Fatal("failed to initialize Redis", zap.Error(err))
	}

	if config.EnablePrometheusMetrics {
		if err := monitor.InitPrometheusMonitoring(common.Version, runtime.Version(), time.Unix(config.StartTime, 0)); err != nil {
			logger.Logger.Fatal("failed to initialize Prometheus monitoring", zap.Error(err))
		}
		logger.Logger.Info("Prometheus monitoring initialized")
	}

	client.Init()

	if config.LogRetentionDays > 0 && logger.LogDir != "" {
		logger.StartLogRetentionCleaner(ctx, config.LogRetentionDays, logger.LogDir)
	}

	resolver := media.NewResolver(media.OptionsFromConfig("http://127.0.0.1:" + port + "/api/transcribe"))
	pipeline := rcontroller.NewChatPipeline(tok, resolver)

	logLevel := glog.LevelInfo
	if config.DebugEnabled {
		logLevel = glog.LevelDebug
	}

	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		middleware.RelayPanicRecover(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logLevel.String()),
			gmw.WithLogger(logger.Logger.Named("gin")),
		),
	)
	// gzip would buffer the text stream, keep it off
	server.Use(middleware.RequestId())
	server.Use(middleware.CORS())

	if config.EnablePrometheusMetrics {
		server.Use(middleware.PrometheusMetrics())
		server.GET("/metrics", gin.WrapH(promhttp.Handler()))
		logger.Logger.Info("Prometheus metrics endpoint available at /metrics")
	}

	router.SetRouter(server, router.Deps{
		Pipeline:    pipeline,
		Transcriber: media.TranscriberFromConfig(),
		Tokenizer:   tok,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info("server started", zap.String("address", "http://localhost:"+port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()
	logger.Logger.Info("shutdown signal received, draining in-flight requests",
		zap.Int64("in_flight", graceful.InFlight()),
		zap.Duration("timeout", config.ShutdownTimeout))
	graceful.SetDraining()

	drainCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := graceful.Drain(drainCtx); err != nil {
		logger.Logger.Warn("drain did not finish before timeout", zap.Error(err))
	}
	if err := srv.Shutdown(drainCtx); err != nil {
		logger.Logger.Error("server shutdown failed", zap.Error(err))
		_ = srv.Close()
	}
	logger.Logger.Info("server stopped")
}
