package main

import (
	"context"
	"net/http"
	"time"

	"github.com/avetisov/seminarbot/config"
	"github.com/avetisov/seminarbot/internal/bot"
	"github.com/avetisov/seminarbot/internal/logger"
	"github.com/avetisov/seminarbot/internal/repository"
	"github.com/avetisov/seminarbot/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			NewGinEngine,
		),

		// Storage Layer
		fx.Provide(
			repository.NewRecordRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewGeminiFeedbackService,
			service.NewSubmissionService,
			service.NewCollectService,
		),

		// Transport Layer
		fx.Provide(
			bot.New,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(RunBot),
		fx.Invoke(RunOpsServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	return r
}

// RunBot starts the Telegram long-poll loop and stops it on shutdown.
func RunBot(lc fx.Lifecycle, b *bot.Bot) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go b.Run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			b.Stop()
			return nil
		},
	})
}

// RunOpsServer exposes the liveness/status endpoint for deployment probes.
func RunOpsServer(lc fx.Lifecycle, router *gin.Engine, cfg *config.Config) {
	startedAt := time.Now()

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"uptime":       time.Since(startedAt).String(),
			"store_path":   cfg.Store.Path,
			"gemini_model": cfg.Gemini.Model,
		})
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Ops server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Ops server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}
