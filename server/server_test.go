package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/wrfconf/engine/document"
	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/generate"
	"github.com/compozy/wrfconf/engine/schema"
	"github.com/compozy/wrfconf/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, generator generate.Generator) *gin.Engine {
	t.Helper()
	if generator == nil {
		g, err := generate.NewLocalGenerator(generate.WithFs(afero.NewMemMapFs()))
		require.NoError(t, err)
		generator = g
	}
	srv := NewServer(&Config{Host: "127.0.0.1", Port: 0, CORSEnabled: true}, schema.Default(), generator, "test")
	return srv.Router(logger.NewLogger(logger.TestConfig()))
}

func readyBody(t *testing.T, outputDir string) []byte {
	t.Helper()
	reg := schema.Default()
	r := document.NewReducer(reg)
	doc, err := r.Apply(document.Default(reg), schema.DomainSetup, document.Section{
		"map_proj":       field.Of(field.String("lambert")),
		"geog_data_path": field.Of(field.String("/data/geog")),
	})
	require.NoError(t, err)
	body, err := json.Marshal(generate.Request{Document: doc, OutputDir: outputDir})
	require.NoError(t, err)
	return body
}

func do(router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, generate.Request) (*generate.Response, error) {
	return nil, &generate.RequestError{Status: http.StatusInternalServerError, Message: "backend down"}
}

func TestServer_Health(t *testing.T) {
	t.Run("Should report healthy with the version", func(t *testing.T) {
		w := do(newTestRouter(t, nil), http.MethodGet, "/api/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","version":"test"}`, w.Body.String())
	})
}

func TestServer_Options(t *testing.T) {
	t.Run("Should list sections and enumerations", func(t *testing.T) {
		w := do(newTestRouter(t, nil), http.MethodGet, "/api/options", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Enumerations map[string]any   `json:"enumerations"`
			Sections     []map[string]any `json:"sections"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body.Enumerations, "map_proj")
		assert.Len(t, body.Sections, len(schema.Default().Sections()))
	})
}

func TestServer_Validate(t *testing.T) {
	t.Run("Should flag the missing projection of the default document", func(t *testing.T) {
		body, err := json.Marshal(generate.Request{Document: document.Default(schema.Default())})
		require.NoError(t, err)
		w := do(newTestRouter(t, nil), http.MethodPost, "/api/validate", body)
		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["valid"])
		assert.Equal(t, false, resp["can_generate"])
		assert.Contains(t, w.Body.String(), "map_proj")
	})

	t.Run("Should accept a ready document", func(t *testing.T) {
		w := do(newTestRouter(t, nil), http.MethodPost, "/api/validate", readyBody(t, ""))
		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["can_generate"])
	})

	t.Run("Should reject malformed json", func(t *testing.T) {
		w := do(newTestRouter(t, nil), http.MethodPost, "/api/validate", []byte("{"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestServer_Generate(t *testing.T) {
	t.Run("Should render files and serve them for download", func(t *testing.T) {
		router := newTestRouter(t, nil)
		w := do(router, http.MethodPost, "/api/generate", readyBody(t, ""))
		require.Equal(t, http.StatusOK, w.Code)
		var resp generate.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		link, ok := resp.DownloadLinks[generate.FileWPS]
		require.True(t, ok)

		dl := do(router, http.MethodGet, link, nil)
		require.Equal(t, http.StatusOK, dl.Code)
		assert.Equal(t, resp.FileContents[generate.FileWPS], dl.Body.String())
		assert.Contains(t, dl.Header().Get("Content-Disposition"), "namelist.wps")
		assert.Contains(t, dl.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("Should answer 422 with blockers when not ready", func(t *testing.T) {
		body, err := json.Marshal(generate.Request{Document: document.Default(schema.Default())})
		require.NoError(t, err)
		w := do(newTestRouter(t, nil), http.MethodPost, "/api/generate", body)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "map_proj")
	})

	t.Run("Should answer 502 when the generator fails", func(t *testing.T) {
		w := do(newTestRouter(t, failingGenerator{}), http.MethodPost, "/api/generate", readyBody(t, ""))
		require.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "backend down")
	})

	t.Run("Should answer 404 for unknown downloads", func(t *testing.T) {
		w := do(newTestRouter(t, nil), http.MethodGet, "/api/download/nope/namelist.wps", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_GenerateOutputDir(t *testing.T) {
	setup := func(t *testing.T, root string) (afero.Fs, *gin.Engine) {
		t.Helper()
		fs := afero.NewMemMapFs()
		g, err := generate.NewLocalGenerator(generate.WithFs(fs))
		require.NoError(t, err)
		srv := NewServer(&Config{Host: "127.0.0.1", OutputRoot: root}, schema.Default(), g, "test")
		return fs, srv.Router(logger.NewLogger(logger.TestConfig()))
	}

	t.Run("Should write under the output root", func(t *testing.T) {
		fs, router := setup(t, "/srv/runs")
		w := do(router, http.MethodPost, "/api/generate", readyBody(t, "case-1/d01"))
		require.Equal(t, http.StatusOK, w.Code)
		var resp generate.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "/srv/runs/case-1/d01", resp.OutputDir)
		ok, err := afero.Exists(fs, "/srv/runs/case-1/d01/namelist.input")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Should refuse directories outside the output root", func(t *testing.T) {
		for _, dir := range []string{"/tmp/victim/nested", "../victim", "a/../../victim"} {
			fs, router := setup(t, "/srv/runs")
			w := do(router, http.MethodPost, "/api/generate", readyBody(t, dir))
			assert.Equal(t, http.StatusBadRequest, w.Code, dir)
			assert.Contains(t, w.Body.String(), "output_dir rejected", dir)
			for _, path := range []string{"/tmp/victim", "/srv/victim", "/srv/runs"} {
				ok, err := afero.DirExists(fs, path)
				require.NoError(t, err)
				assert.False(t, ok, "%s created for %s", path, dir)
			}
		}
	})

	t.Run("Should refuse any directory without an output root", func(t *testing.T) {
		fs, router := setup(t, "")
		w := do(router, http.MethodPost, "/api/generate", readyBody(t, "runs"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		ok, err := afero.DirExists(fs, "runs")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should still render without writing when no directory is named", func(t *testing.T) {
		_, router := setup(t, "")
		w := do(router, http.MethodPost, "/api/generate", readyBody(t, ""))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestResolveOutputDir(t *testing.T) {
	t.Run("Should keep nested relative paths inside the root", func(t *testing.T) {
		dir, err := resolveOutputDir("/srv/runs/", "a/./b/../c")
		require.NoError(t, err)
		assert.Equal(t, "/srv/runs/a/c", dir)
	})

	t.Run("Should treat names starting with dots as inside the root", func(t *testing.T) {
		dir, err := resolveOutputDir("/srv/runs", "..cache")
		require.NoError(t, err)
		assert.Equal(t, "/srv/runs/..cache", dir)
	})

	t.Run("Should refuse the parent of the root", func(t *testing.T) {
		_, err := resolveOutputDir("/srv/runs", "..")
		assert.ErrorIs(t, err, ErrOutputDir)
	})
}

func TestServer_CORS(t *testing.T) {
	t.Run("Should short-circuit preflight requests", func(t *testing.T) {
		w := do(newTestRouter(t, nil), http.MethodOptions, "/api/generate", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Should send no CORS headers unless enabled", func(t *testing.T) {
		srv := NewServer(nil, schema.Default(), failingGenerator{}, "test")
		router := srv.Router(logger.NewLogger(logger.TestConfig()))
		w := do(router, http.MethodGet, "/api/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestConfig_FullAddress(t *testing.T) {
	t.Run("Should join host and port", func(t *testing.T) {
		c := &Config{Host: "0.0.0.0", Port: 5001}
		assert.Equal(t, "0.0.0.0:5001", c.FullAddress())
	})
}

func TestArtifactStore(t *testing.T) {
	t.Run("Should evict the least recently used generation", func(t *testing.T) {
		store := newArtifactStore(2)
		first := store.put(map[string]string{"a": "1"})
		second := store.put(map[string]string{"a": "2"})
		_, ok := store.get(first, "a")
		require.True(t, ok)
		store.put(map[string]string{"a": "3"})

		_, ok = store.get(second, "a")
		assert.False(t, ok)
		text, ok := store.get(first, "a")
		assert.True(t, ok)
		assert.Equal(t, "1", text)
	})

	t.Run("Should miss unknown files of a known generation", func(t *testing.T) {
		store := newArtifactStore(0)
		id := store.put(map[string]string{"namelist.wps": "&share\n/"})
		_, ok := store.get(id, "namelist.input")
		assert.False(t, ok)
	})
}

func TestServer_Run(t *testing.T) {
	ctx := logger.ContextWithLogger(context.Background(), logger.NewLogger(logger.TestConfig()))

	t.Run("Should stop cleanly when the context ends", func(t *testing.T) {
		srv := NewServer(&Config{Host: "127.0.0.1", Port: 0}, schema.Default(), failingGenerator{}, "test")
		runCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		assert.NoError(t, srv.Run(runCtx))
	})

	t.Run("Should fail when the address is taken", func(t *testing.T) {
		listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer listener.Close()
		port := listener.Addr().(*net.TCPAddr).Port
		srv := NewServer(&Config{Host: "127.0.0.1", Port: port}, schema.Default(), failingGenerator{}, "test")
		runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		assert.ErrorContains(t, srv.Run(runCtx), "server failed to start")
	})
}
