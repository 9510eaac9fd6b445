package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"github.com/vagangabrain/Happy-Meowth/internal/config"
	"github.com/vagangabrain/Happy-Meowth/internal/handlers"
	"github.com/vagangabrain/Happy-Meowth/internal/onnx"
	"github.com/vagangabrain/Happy-Meowth/internal/predictor"
	"github.com/vagangabrain/Happy-Meowth/pkg/httpclient"
	"github.com/vagangabrain/Happy-Meowth/pkg/logger"
	"github.com/vagangabrain/Happy-Meowth/pkg/metric"
	"github.com/vagangabrain/Happy-Meowth/pkg/middleware"
)

func main() {
	// a local .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Init()
	logger.Init(cfg.AppName, cfg.AppLogLevel)
	metric.Init()

	session, err := onnx.NewSession(onnx.Config{
		ModelPath:      cfg.ModelPath,
		LibraryPath:    cfg.OnnxLibPath,
		InputName:      cfg.OnnxInputName,
		OutputName:     cfg.OnnxOutputName,
		IntraOpThreads: cfg.OnnxIntraOpThreads,
		UseCuda:        cfg.OnnxUseCuda,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize inference session")
	}

	client := httpclient.NewClient(&httpclient.Config{
		UserAgent:   cfg.HttpUserAgent,
		TimeoutInMs: cfg.FetchTimeoutInMs,
		Transport: &httpclient.TransportConfig{
			DialTimeoutInMs:      cfg.FetchDialTimeoutInMs,
			MaxIdleConns:         cfg.HttpMaxIdleConns,
			MaxIdleConnsPerHost:  cfg.HttpMaxIdleConnsPerHost,
			IdleConnTimeoutInMs:  cfg.HttpIdleConnTimeoutInMs,
			KeepAliveTimeoutInMs: cfg.HttpKeepAliveTimeoutInMs,
		},
	})

	pred, err := predictor.New(predictor.Config{
		LabelsPath:          cfg.LabelsPath,
		ReferenceImagesPath: cfg.ReferenceImagesPath,
		CacheMaxSize:        cfg.CacheMaxSize,
		CacheTtl:            time.Duration(cfg.CacheTtlSeconds) * time.Second,
	}, session, client)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize predictor")
	}

	if cfg.AppEnv == "prod" || cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	router.Use(cors.New(corsConfig), middleware.HTTPLogger(), middleware.HTTPRecovery())
	router.MaxMultipartMemory = 10 << 20

	handlers.NewHandler(pred).Register(router)

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.AppPort),
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()
	log.Info().Msgf("Server started on port %d", cfg.AppPort)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
	client.Close()
	if err := pred.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close predictor")
	}
}
