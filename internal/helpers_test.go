package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/config"
	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/testutil"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db := testutil.NewTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))

	cfg := &config.Config{
		DBPath:      ":memory:",
		ListenAddr:  ":0",
		JWTSecret:   "test-secret-0123456789abcdef",
		JWTIssuer:   "asset-tracking-test",
		JWTAudience: "asset-tracking-test",
		JWTExpiry:   time.Hour,
	}
	return NewServer(db, cfg)
}

// doJSON performs a request against the router with an optional body and a
// token for the given role, and decodes the JSON response into out.
func doJSON(t *testing.T, s *Server, method, path, role string, body, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		token, err := s.JWTManager.GenerateToken(1, "tester", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out),
			"response body: %s", rec.Body.String())
	}
	return rec
}

// addAsset creates an asset through the API and fails the test on any
// status other than the expected one.
func addAsset(t *testing.T, s *Server, name, building, department string, qty int, expect int) map[string]interface{} {
	t.Helper()

	body := map[string]interface{}{
		"name":        name,
		"building":    building,
		"department":  department,
		"quantity":    qty,
		"used_status": "Not Used",
		"asset_type":  "Electronics",
	}
	var out map[string]interface{}
	rec := doJSON(t, s, http.MethodPost, "/assets/add", "admin", body, &out)
	require.Equal(t, expect, rec.Code, "body: %s", rec.Body.String())
	return out
}
