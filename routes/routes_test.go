package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roombook-backend/controllers"
	"roombook-backend/models"
	"roombook-backend/services"
)

func buildTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	store := services.NewRoomStore(services.NewFileBackend(filepath.Join(t.TempDir(), "rooms.json")), nil, nil)
	require.NoError(t, services.SeedRooms(ctx, store, 8, "Room", zap.NewNop()))

	scheduler := services.NewExpiryScheduler()
	t.Cleanup(scheduler.Stop)

	svc := services.NewBookingService(store, scheduler, nil, nil)
	svc.Start(ctx)
	return SetupRouter(controllers.NewRoomController(svc, nil), []string{"*"}, zap.NewNop())
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error body, got %v", body)
	return e["code"].(string)
}

func TestHealth(t *testing.T) {
	r := buildTestRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestBookExtendReleaseFlow(t *testing.T) {
	r := buildTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/rooms/7/book",
		`{"studentName":"Ann","purpose":"Study group","duration":30}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	code, _ := body["bookingCode"].(string)
	assert.Regexp(t, `^[a-f0-9]{8}$`, code)
	room := body["room"].(map[string]any)
	assert.Equal(t, string(models.RoomOccupied), room["status"])
	assert.NotContains(t, room, "bookingCode")

	w, body = doJSON(t, r, http.MethodPost, "/api/rooms/7/book",
		`{"studentName":"Bo","purpose":"Call","duration":"15"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error.roomStateConflict", errorCode(t, body))

	w, body = doJSON(t, r, http.MethodPost, "/api/rooms/7/release", `{"bookingCode":"ffffffff"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "error.invalidBookingCode", errorCode(t, body))

	w, body = doJSON(t, r, http.MethodPost, "/api/rooms/7/extend",
		`{"bookingCode":"`+strings.ToUpper(code)+`","extraMinutes":"10"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/rooms/7/release", `{"bookingCode":"`+code+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, body = doJSON(t, r, http.MethodPost, "/api/rooms/7/extend", `{"bookingCode":"`+code+`","extraMinutes":5}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error.roomStateConflict", errorCode(t, body))

	w, body = doJSON(t, r, http.MethodGet, "/api/rooms/7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.RoomAvailable), body["status"])
}

func TestListRoomsHidesCodes(t *testing.T) {
	r := buildTestRouter(t)
	w, body := doJSON(t, r, http.MethodPost, "/api/rooms/2/book",
		`{"studentName":"Ann","purpose":"Review","duration":45}`)
	require.Equal(t, http.StatusCreated, w.Code)
	code := body["bookingCode"].(string)

	w, _ = doJSON(t, r, http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rooms []models.PublicRoom
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	assert.Len(t, rooms, 8)
	assert.NotContains(t, w.Body.String(), "bookingCode")
	assert.NotContains(t, w.Body.String(), code)
}

func TestValidationAndNotFound(t *testing.T) {
	r := buildTestRouter(t)

	cases := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"zero duration", "/api/rooms/1/book", `{"studentName":"Ann","purpose":"Study","duration":0}`, http.StatusBadRequest, "error.validation"},
		{"fractional duration", "/api/rooms/1/book", `{"studentName":"Ann","purpose":"Study","duration":1.5}`, http.StatusBadRequest, "error.validation"},
		{"missing duration", "/api/rooms/1/book", `{"studentName":"Ann","purpose":"Study"}`, http.StatusBadRequest, "error.validation"},
		{"blank name", "/api/rooms/1/book", `{"studentName":"  ","purpose":"Study","duration":5}`, http.StatusBadRequest, "error.validation"},
		{"malformed json", "/api/rooms/1/book", `{"studentName":`, http.StatusBadRequest, "error.invalidPayload"},
		{"negative extension", "/api/rooms/1/extend", `{"bookingCode":"00000000","extraMinutes":-5}`, http.StatusBadRequest, "error.validation"},
		{"unknown room", "/api/rooms/99/book", `{"studentName":"Ann","purpose":"Study","duration":5}`, http.StatusNotFound, "error.roomNotFound"},
		{"non numeric id", "/api/rooms/abc/release", `{"bookingCode":"00000000"}`, http.StatusNotFound, "error.roomNotFound"},
		{"release available room", "/api/rooms/1/release", `{"bookingCode":"00000000"}`, http.StatusConflict, "error.roomStateConflict"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := doJSON(t, r, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.code, errorCode(t, body))
		})
	}

	w, body := doJSON(t, r, http.MethodGet, "/api/rooms/404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error.roomNotFound", errorCode(t, body))

	// nothing above may have booked room 1
	w, body = doJSON(t, r, http.MethodGet, "/api/rooms/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.RoomAvailable), body["status"])
}
