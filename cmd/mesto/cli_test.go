package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/mesto/internal/infra/logging"
	http_ "github.com/mkrupp/mesto/internal/infra/transport/http"
	"github.com/mkrupp/mesto/internal/repo/card"
	"github.com/mkrupp/mesto/internal/repo/session"
	"github.com/mkrupp/mesto/internal/repo/user"
	"github.com/mkrupp/mesto/internal/svc/appsvc"
	"github.com/mkrupp/mesto/internal/svc/authsvc"
	"github.com/mkrupp/mesto/internal/svc/authsvc/authclient"
	"github.com/mkrupp/mesto/internal/svc/gallerysvc"
	"github.com/mkrupp/mesto/internal/svc/gallerysvc/galleryclient"
	"github.com/mkrupp/mesto/internal/svc/imagesvc"
)

func startBackend(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	users := user.SQLiteUserRepositoryFactory(user.SQLiteUserRepositoryConfig{DatabasePath: filepath.Join(dir, "g.db")})

	authSvc, err := authsvc.NewAuthService(users, authsvc.AuthConfig{
		SigningKeyFile: filepath.Join(dir, "g.key"),
		TokenDuration:  time.Hour,
		BcryptCost:     bcrypt.MinCost,
		DefaultName:    "Jacques-Yves Cousteau",
		DefaultAbout:   "Explorer",
		DefaultAvatar:  "https://example.com/cousteau.png",
	})
	require.NoError(t, err)

	gallerySvc, err := gallerysvc.NewGalleryService(
		users,
		card.SQLiteCardRepositoryFactory(card.SQLiteCardRepositoryConfig{DatabasePath: filepath.Join(dir, "g.db")}),
		gallerysvc.GalleryConfig{MinTextLength: 2, MaxTextLength: 30},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = authSvc.Close()
		_ = gallerySvc.Close()
	})

	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for x := range 64 {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}

	var pic bytes.Buffer
	require.NoError(t, png.Encode(&pic, img))

	mux := http.NewServeMux()
	mux.Handle("/", http_.NewRouter(
		authsvc.NewHTTPTransport(authSvc, authsvc.HTTPTransportConfig{MaxBodySize: 1 << 16}),
		gallerysvc.NewHTTPTransport(gallerySvc, authSvc, gallerysvc.HTTPTransportConfig{
			URLCardIDParam: "card_id",
			MaxBodySize:    1 << 16,
		}),
	))
	mux.HandleFunc("GET /images/sea.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pic.Bytes())
	})

	server := httptest.NewServer(http_.Handler(mux, logging.NewNopLogger()))
	t.Cleanup(server.Close)

	return server
}

// mesto runs one CLI invocation against server with a fresh controller, as a
// new process would, sharing the session store between invocations.
func mesto(t *testing.T, server *httptest.Server, sessions session.Store, args ...string) (string, string, error) {
	t.Helper()

	cfg := Config{
		API:   http_.JSONClientConfig{BaseURL: server.URL},
		App:   appsvc.AppConfig{OptimisticClose: true, ProbeLinks: true},
		Image: imagesvc.ImageConfig{Interpolator: "bilinear", MaxSize: 1 << 20, Timeout: time.Second},
	}

	images, err := imagesvc.NewHTTPImageService(cfg.Image, server.Client())
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer

	cli := &CLI{
		cfg: cfg,
		ctrl: appsvc.NewAppController(
			cfg.App,
			authclient.NewHTTPClient(authclient.HTTPClientConfig{JSONClientConfig: cfg.API}, server.Client()),
			galleryclient.NewHTTPClient(galleryclient.HTTPClientConfig{JSONClientConfig: cfg.API}, sessions, server.Client()),
			sessions,
			images,
		),
		images: images,
		out:    &stdout,
		errOut: &stderr,
	}

	err = cli.Run(context.Background(), args)

	return stdout.String(), stderr.String(), err
}

func TestCLI(t *testing.T) {
	t.Parallel()

	server := startBackend(t)
	sessions := session.NewMemoryStore("")

	_, _, err := mesto(t, server, sessions, "cards")
	require.ErrorIs(t, err, errNotSignedIn)

	_, stderr, err := mesto(t, server, sessions, "signup", "-email", "jy@example.com", "-password", "calypso")
	require.NoError(t, err)
	assert.Contains(t, stderr, "[success] You have successfully registered!")

	_, stderr, err = mesto(t, server, sessions, "signin", "-email", "jy@example.com", "-password", "wrong")
	require.Error(t, err)
	assert.Contains(t, stderr, "[failure]")

	stdout, _, err := mesto(t, server, sessions, "signin", "-email", "jy@example.com", "-password", "calypso")
	require.NoError(t, err)
	assert.Equal(t, "signed in as jy@example.com (0 cards in feed)\n", stdout)

	_, stderr, err = mesto(t, server, sessions, "add", "-name", "Broken", "-link", server.URL+"/images/missing.png")
	require.Error(t, err)
	assert.Contains(t, stderr, "[failure]")

	stdout, _, err = mesto(t, server, sessions, "add", "-name", "Calypso", "-link", server.URL+"/images/sea.png")
	require.NoError(t, err)

	cardID := strings.TrimSpace(strings.TrimPrefix(stdout, "added "))
	require.NotEmpty(t, cardID)

	stdout, _, err = mesto(t, server, sessions, "cards")
	require.NoError(t, err)
	assert.Contains(t, stdout, cardID)
	assert.Contains(t, stdout, "Calypso")
	assert.Contains(t, stdout, "you")

	stdout, _, err = mesto(t, server, sessions, "like", cardID)
	require.NoError(t, err)
	assert.Equal(t, "liked "+cardID+" (1 likes)\n", stdout)

	stdout, _, err = mesto(t, server, sessions, "like", cardID)
	require.NoError(t, err)
	assert.Equal(t, "unliked "+cardID+" (0 likes)\n", stdout)

	_, _, err = mesto(t, server, sessions, "like", "nope")
	require.ErrorIs(t, err, errNoSuchCard)

	out := filepath.Join(t.TempDir(), "preview.png")
	_, _, err = mesto(t, server, sessions, "open", "-width", "16", "-o", out, cardID)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	preview, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 16, preview.Width)
	assert.Equal(t, 8, preview.Height)

	stdout, _, err = mesto(t, server, sessions, "profile", "-about", "Oceanographer")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Oceanographer")
	assert.Contains(t, stdout, "Jacques-Yves Cousteau")

	stdout, _, err = mesto(t, server, sessions, "delete", cardID)
	require.NoError(t, err)
	assert.Equal(t, "deleted "+cardID+"\n", stdout)

	stdout, _, err = mesto(t, server, sessions, "signout")
	require.NoError(t, err)
	assert.Equal(t, "signed out\n", stdout)

	_, _, err = mesto(t, server, sessions, "whoami")
	require.ErrorIs(t, err, errNotSignedIn)
}

func TestCLI_Usage(t *testing.T) {
	t.Parallel()

	server := startBackend(t)
	sessions := session.NewMemoryStore("")

	_, stderr, err := mesto(t, server, sessions)
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "usage: mesto COMMAND")

	_, stderr, err = mesto(t, server, sessions, "teleport")
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, `unknown command "teleport"`)
}
