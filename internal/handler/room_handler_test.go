package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"driftchat/internal/app/chat"
	"driftchat/internal/configs"
	"driftchat/internal/pkg/errs"
	"driftchat/internal/pkg/randx"
	"driftchat/internal/pkg/resp"
)

func newTestServer(t *testing.T) (*chat.Hub, http.Handler) {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:       "development",
		RoomGracePeriod:   time.Minute,
		MaxUploadBytes:    1 << 20,
		CreateRatePerSec:  100,
		CreateBurst:       100,
		ConnectRatePerSec: 100,
		ConnectBurst:      100,
	}

	hub := chat.NewHub(cfg)
	t.Cleanup(hub.Shutdown)

	return hub, Router(hub, cfg)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (resp.JSONResponse, map[string]any) {
	t.Helper()

	var envelope resp.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	data, _ := envelope.Data.(map[string]any)
	return envelope, data
}

func TestCreateRoomReturnsValidID(t *testing.T) {
	req := require.New(t)
	_, router := newTestServer(t)

	rec := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/chat/create",
		strings.NewReader(`{"roomName":"My Room","username":"alice"}`))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, request)

	req.Equal(http.StatusOK, rec.Code)

	envelope, data := decodeEnvelope(t, rec)
	req.Zero(envelope.Code)

	roomID, _ := data["roomId"].(string)
	req.True(randx.IsValidRoomID(roomID), "got room id %q", roomID)
}

func TestCreateRoomValidation(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantCode    int
	}{
		{"missing username", "application/json", `{"roomName":"My Room"}`, errs.ErrInvalidParams},
		{"blank room name", "application/json", `{"roomName":"   ","username":"alice"}`, errs.ErrInvalidParams},
		{"name too long", "application/json", `{"roomName":"` + strings.Repeat("x", 65) + `","username":"alice"}`, errs.ErrInvalidParams},
		{"unknown field", "application/json", `{"roomName":"My Room","username":"alice","admin":true}`, errs.ErrInvalidJSONFormat},
		{"malformed body", "application/json", `{"roomName":`, errs.ErrInvalidJSONFormat},
		{"wrong content type", "text/plain", `{"roomName":"My Room","username":"alice"}`, errs.ErrUnsupportedMediaType},
	}

	_, router := newTestServer(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/api/chat/create", strings.NewReader(tt.body))
			request.Header.Set("Content-Type", tt.contentType)
			router.ServeHTTP(rec, request)

			envelope, _ := decodeEnvelope(t, rec)
			require.Equal(t, tt.wantCode, envelope.Code)
		})
	}
}

func TestCheckRoomReportsExistence(t *testing.T) {
	req := require.New(t)
	hub, router := newTestServer(t)

	roomID, err := hub.CreateRoom("My Room", "alice")
	req.NoError(err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/check/"+roomID, nil))
	req.Equal(http.StatusOK, rec.Code)

	_, data := decodeEnvelope(t, rec)
	req.Equal(true, data["exists"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/check/ZZZZZZZZ", nil))
	req.Equal(http.StatusOK, rec.Code)

	_, data = decodeEnvelope(t, rec)
	req.Equal(false, data["exists"])
}

func TestCheckRoomRejectsMalformedID(t *testing.T) {
	_, router := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/check/not-an-id", nil))

	envelope, _ := decodeEnvelope(t, rec)
	require.Equal(t, errs.ErrInvalidParams, envelope.Code)
}

func TestHealthEndpoint(t *testing.T) {
	req := require.New(t)
	_, router := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `"status":"ok"`)
}
