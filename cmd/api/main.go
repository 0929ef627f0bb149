package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"storycanvas/internal/http/handlers"
	"storycanvas/internal/http/httpapi"
	"storycanvas/internal/imagegen"
	"storycanvas/internal/infra"
	"storycanvas/internal/providers/genai"
	"storycanvas/internal/providers/rewrite"
	"storycanvas/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	client := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Logger:  &logger,
	})
	orchestrator := imagegen.NewOrchestrator(imagegen.Options{
		Caller:     client,
		ImageModel: cfg.GeminiImageModel,
		BatchModel: cfg.ImagenModel,
		Logger:     &logger,
	})
	rewriter := rewrite.NewGeminiRewriter(rewrite.Options{
		Caller: client,
		Model:  cfg.GeminiRewriteModel,
		Logger: &logger,
	})
	sessions := session.NewStore(cfg.SessionTTL)

	app := handlers.NewApp(cfg, &logger, sessions, orchestrator, rewriter)
	router := httpapi.NewRouter(cfg, app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
