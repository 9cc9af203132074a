package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/grocery-share/internal/database"
	"github.com/mrlokans/grocery-share/internal/database/people"
	"github.com/mrlokans/grocery-share/internal/database/products"
	"github.com/mrlokans/grocery-share/internal/database/purchases"
	"github.com/mrlokans/grocery-share/internal/database/settings"
	"github.com/mrlokans/grocery-share/internal/services"
	"github.com/mrlokans/grocery-share/internal/settingsstore"
)

type testServer struct {
	router    *gin.Engine
	mgr       *database.Manager
	people    *people.Repository
	products  *products.Repository
	purchases *purchases.Repository
	prefs     *settingsstore.SettingsStore
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr := database.NewManager(database.Options{
		Name:     t.Name(),
		Path:     filepath.Join(t.TempDir(), "http.db"),
		LogLevel: logger.Silent,
		Registry: database.NewRegistry(),
	})
	t.Cleanup(func() { mgr.Close() })

	s := &testServer{
		mgr:       mgr,
		people:    people.NewRepository(mgr),
		products:  products.NewRepository(mgr),
		purchases: purchases.NewRepository(mgr),
		prefs:     settingsstore.New(settings.NewRepository(mgr), "light"),
	}
	s.router = NewRouter(RouterConfig{
		Health:                    mgr,
		People:                    s.people,
		Products:                  s.products,
		Purchases:                 s.purchases,
		Workflow:                  services.NewPurchaseService(s.purchases, s.products, s.prefs),
		Preferences:               s.prefs,
		ProductSearchLimit:        10,
		RecentEstablishmentsLimit: 10,
		Version:                   "test",
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
