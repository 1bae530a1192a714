package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/mesto/internal/infra/config"
	"github.com/mkrupp/mesto/internal/infra/logging"
	http_ "github.com/mkrupp/mesto/internal/infra/transport/http"
	"github.com/mkrupp/mesto/internal/repo/session"
	"github.com/mkrupp/mesto/internal/svc/appsvc"
	"github.com/mkrupp/mesto/internal/svc/authsvc/authclient"
	"github.com/mkrupp/mesto/internal/svc/gallerysvc/galleryclient"
	"github.com/mkrupp/mesto/internal/svc/imagesvc"
)

const (
	appName = "mesto"
	svcName = "cli"
)

type Config struct {
	config.EnvConfig

	Log     logging.LoggerConfig      `envPrefix:"LOG_"`
	API     http_.JSONClientConfig    `envPrefix:"API_"`
	Session session.SQLiteStoreConfig `envPrefix:"SESSION_"`
	App     appsvc.AppConfig          `envPrefix:"APP_"`
	Image   imagesvc.ImageConfig      `envPrefix:"IMAGE_"`
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
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg, os.Args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}

		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, args []string) (err error) {
	log := logging.GetLogger("cmd.mesto")

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "command failed", "error", err)
		}
	}()

	sessions, err := session.SQLiteStoreFactory(cfg.Session)()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessions.Close()

	images, err := imagesvc.NewHTTPImageService(cfg.Image, nil)
	if err != nil {
		return fmt.Errorf("new image service: %w", err)
	}

	ctrl := appsvc.NewAppController(
		cfg.App,
		authclient.NewHTTPClient(authclient.HTTPClientConfig{JSONClientConfig: cfg.API}, nil),
		galleryclient.NewHTTPClient(galleryclient.HTTPClientConfig{JSONClientConfig: cfg.API}, sessions, nil),
		sessions,
		images,
	)

	cli := &CLI{
		cfg:    cfg,
		ctrl:   ctrl,
		images: images,
		out:    os.Stdout,
		errOut: os.Stderr,
	}

	return cli.Run(ctx, args)
}
