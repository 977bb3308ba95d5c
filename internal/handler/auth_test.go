package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relaydesk/relay/pkg/logger"
)

func tokenRequestRec(t *testing.T, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewAuthHandler("good-key", "signing-secret", 15*time.Minute, logger.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	h.Token(rec, req)
	return rec
}

func TestToken_MissingKey(t *testing.T) {
	rec := tokenRequestRec(t, "", `{"client_id":"ops"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestToken_WrongKey(t *testing.T) {
	rec := tokenRequestRec(t, "bad-key", `{"client_id":"ops"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestToken_MissingClientID(t *testing.T) {
	rec := tokenRequestRec(t, "good-key", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToken_Issued(t *testing.T) {
	rec := tokenRequestRec(t, "good-key", `{"client_id":"ops"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, int64(900), resp.ExpiresIn)
}
