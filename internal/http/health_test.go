package http

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duobook/studio/internal/database"
	"github.com/duobook/studio/internal/library"
)

func TestHealthWithDatabase(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	defer db.Close()

	router := NewRouter(RouterConfig{
		Registry: library.NewRegistry(),
		Database: db,
		Version:  "test",
	})

	w := performRequest(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Equal(t, "test", body.Version)
}

func TestHealthWithoutDatabase(t *testing.T) {
	router := NewRouter(RouterConfig{Registry: library.NewRegistry()})

	w := performRequest(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not configured", body.Checks["database"])
}
