package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cipherpuzzles/ccxc-website/pkg/api"
	"github.com/cipherpuzzles/ccxc-website/pkg/errors"
	"github.com/cipherpuzzles/ccxc-website/pkg/fingerprint"
	"github.com/cipherpuzzles/ccxc-website/pkg/request"
	"github.com/cipherpuzzles/ccxc-website/pkg/session"
)

func setupCLI(t *testing.T) (*api.Service, *fingerprint.Collector, *session.Store) {
	r := chi.NewRouter()
	r.Post(api.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]interface{}{"status": 1, "uid": 3, "username": "carol", "token": "t", "sk": "s"})
	})
	r.Post(api.PathArticle, func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]interface{}{"status": 1, "title": "Rules"})
	})
	r.Post(api.PathStart, func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]interface{}{"status": 1, "start_prefix": "/p"})
	})
	r.Get(api.PathCaptcha, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(api.CaptchaNonceHeader, "n-1")
		w.Write([]byte("img"))
	})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	store := session.NewStore(session.NewMemoryStorage())
	collector := fingerprint.NewCollector(fingerprint.NewHostProbe(fingerprint.WithFontDirs(t.TempDir())))
	svc := api.NewService(request.NewClient(server.URL, store), store, api.WithUserIDFunc(collector.DeriveUserID))
	return svc, collector, store
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	svc, collector, store := setupCLI(t)

	var out bytes.Buffer
	require.NoError(t, run(ctx, "whoami", options{}, svc, collector, &out))
	assert.Equal(t, "Not logged in\n", out.String())

	out.Reset()
	require.NoError(t, run(ctx, "login", options{Email: "c@example.com", Pass: "pw"}, svc, collector, &out))
	assert.Equal(t, "Logged in as carol (uid 3)\n", out.String())
	assert.True(t, store.IsLive())

	out.Reset()
	require.NoError(t, run(ctx, "whoami", options{}, svc, collector, &out))
	assert.Contains(t, out.String(), `"username": "carol"`)

	out.Reset()
	require.NoError(t, run(ctx, "article", options{Path: "rules"}, svc, collector, &out))
	assert.Contains(t, out.String(), `"title": "Rules"`)

	out.Reset()
	require.NoError(t, run(ctx, "start", options{}, svc, collector, &out))
	assert.Equal(t, "/p\n", out.String())

	out.Reset()
	require.NoError(t, run(ctx, "userid", options{}, svc, collector, &out))
	assert.Len(t, out.String(), 65)

	out.Reset()
	require.NoError(t, run(ctx, "fingerprint", options{}, svc, collector, &out))
	assert.Contains(t, out.String(), `"webglFingerprint": {`)

	captchaPath := filepath.Join(t.TempDir(), "captcha.png")
	out.Reset()
	require.NoError(t, run(ctx, "captcha", options{Output: captchaPath}, svc, collector, &out))
	assert.Contains(t, out.String(), "Nonce: n-1")
	data, err := os.ReadFile(captchaPath)
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	out.Reset()
	require.NoError(t, run(ctx, "logout", options{}, svc, collector, &out))
	assert.False(t, store.IsLive())
}

func TestRun_InvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, collector, _ := setupCLI(t)
	var out bytes.Buffer

	tests := []struct {
		name    string
		command string
		opts    options
		message string
	}{
		{"LoginNoEmail", "login", options{Pass: "p"}, "invalid email: login needs -email"},
		{"LoginNoPass", "login", options{Email: "a@b.c"}, "invalid pass: login needs -pass"},
		{"ArticleNoPath", "article", options{}, "invalid path: article needs -path"},
		{"UnknownCommand", "dance", options{}, `invalid cmd: unknown command "dance"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(ctx, tt.command, tt.opts, svc, collector, &out)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
			assert.Equal(t, tt.message, errors.GetMessage(err))
		})
	}

	t.Run("CaptchaUnwritable", func(t *testing.T) {
		opts := options{Output: filepath.Join(t.TempDir(), "missing", "captcha.png")}
		err := run(ctx, "captcha", opts, svc, collector, &out)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
	})
}
