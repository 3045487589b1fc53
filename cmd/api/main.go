package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"linguachat/internal/adapter/repo"
	"linguachat/internal/dispatch"
	"linguachat/internal/http/handlers"
	httpapi "linguachat/internal/http/httpapi"
	"linguachat/internal/infra"
	"linguachat/internal/infra/geoip"
	"linguachat/internal/invite"
	"linguachat/internal/middleware"
	"linguachat/internal/providers/transcribe"
	"linguachat/internal/providers/translate"
	"linguachat/internal/quota"
	"linguachat/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	if err := infra.EnsureSchema(ctx, dbpool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply database schema")
	}

	store, err := storage.NewFileStore(cfg.StorageBasePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open blob store")
	}

	geoResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, continuing without it")
	}
	var countryLookup middleware.CountryLookup
	if geoResolver != nil {
		countryLookup = geoResolver.CountryCode
	}

	translator, err := translate.NewGoogleClient(translate.GoogleOptions{
		APIKey:  cfg.TranslateAPIKey,
		BaseURL: cfg.TranslateBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build translate client")
	}
	transcriber, err := transcribe.NewWhisperClient(transcribe.WhisperOptions{
		APIKey:  cfg.TranscribeAPIKey,
		Model:   cfg.TranscribeModel,
		BaseURL: cfg.TranscribeBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build transcribe client")
	}

	chats := repo.NewChatRepository(dbpool)
	messages := repo.NewMessageRepository(dbpool)
	users := repo.NewUserRepository(dbpool)
	invitations := repo.NewInvitationRepository(dbpool)

	ledger := quota.NewLedger(dbpool, users, logger)
	orchestrator := dispatch.NewOrchestrator(ledger, translator, users, logger)
	dispatcher := dispatch.NewDispatcher(ledger, store, transcriber, orchestrator, messages, logger)
	inviteSvc := invite.NewService(chats, users, invitations, ledger, cfg.InviteBaseURL, logger)

	app := &handlers.App{
		Dispatcher: dispatcher,
		Invites:    inviteSvc,
		Chats:      chats,
		Messages:   messages,
		Users:      users,
		Usage:      ledger,
		Logger:     logger,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   countryLookup,
		StaticDir:       store.BasePath(),
	})

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
