package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/mesto/internal/infra/config"
	"github.com/mkrupp/mesto/internal/infra/logging"
	"github.com/mkrupp/mesto/internal/infra/transport/http"
	"github.com/mkrupp/mesto/internal/repo/card"
	"github.com/mkrupp/mesto/internal/repo/user"
	"github.com/mkrupp/mesto/internal/svc/authsvc"
	"github.com/mkrupp/mesto/internal/svc/gallerysvc"
)

const (
	appName = "mesto"
	svcName = "gallerysvc"
)

type Config struct {
	config.EnvConfig

	Log     logging.LoggerConfig            `envPrefix:"LOG_"`
	Auth    authsvc.AuthConfig              `envPrefix:"AUTH_"`
	Gallery gallerysvc.GalleryConfig        `envPrefix:"GALLERY_"`
	HTTP    gallerysvc.HTTPTransportConfig  `envPrefix:"HTTP_"`
	User    user.SQLiteUserRepositoryConfig `envPrefix:"USER_"`
	Card    card.SQLiteCardRepositoryConfig `envPrefix:"CARD_"`
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.gallerysvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}

		log.InfoContext(ctx, "shutdown")
	}()

	authSvc, err := authsvc.NewAuthService(
		user.SQLiteUserRepositoryFactory(cfg.User),
		cfg.Auth,
	)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}
	defer authSvc.Close()

	gallerySvc, err := gallerysvc.NewGalleryService(
		user.SQLiteUserRepositoryFactory(cfg.User),
		card.SQLiteCardRepositoryFactory(cfg.Card),
		cfg.Gallery,
	)
	if err != nil {
		return fmt.Errorf("new gallery service: %w", err)
	}
	defer gallerySvc.Close()

	router := http.NewRouter(
		authsvc.NewHTTPTransport(authSvc, authsvc.HTTPTransportConfig{
			HTTPTransportConfig: cfg.HTTP.HTTPTransportConfig,
			MaxBodySize:         cfg.HTTP.MaxBodySize,
		}),
		gallerysvc.NewHTTPTransport(gallerySvc, authSvc, cfg.HTTP),
	)

	if err := http.ListenAndServe(ctx, router, cfg.HTTP.HTTPTransportConfig); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
