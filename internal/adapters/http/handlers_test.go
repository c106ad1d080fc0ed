package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juncto/meet/internal/config"
	"github.com/juncto/meet/internal/core"
	"github.com/juncto/meet/internal/domain"
)

func newTestHandlers() (*Handlers, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	h := &Handlers{
		Room: core.NewRoom(16),
		Cfg:  &config.Config{MaxUploadSize: 1 << 20},
	}
	r := gin.New()
	api := r.Group("/api")
	api.POST("/rooms", h.CreateRoom)
	api.GET("/health", h.Health)
	api.POST("/upload", h.Upload)
	api.POST("/feedback", h.Feedback)
	return h, r
}

func TestHealth(t *testing.T) {
	_, r := newTestHandlers()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestCreateRoomResetsState(t *testing.T) {
	h, r := newTestHandlers()

	body := `{"room_name":"Standup","is_locked":true,"max_participants":5}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		RoomID string            `json:"room_id"`
		Config domain.RoomConfig `json:"config"`
		Status string            `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.RoomID, "room-"))
	assert.Equal(t, "created", resp.Status)
	assert.Equal(t, "Standup", resp.Config.RoomName)
	assert.True(t, resp.Config.IsLocked)
	assert.Equal(t, uint32(5), resp.Config.MaxParticipants)
	assert.Empty(t, resp.Config.HostID)

	cfg := h.Room.Config()
	assert.Equal(t, "Standup", cfg.RoomName)
	assert.True(t, cfg.IsLocked)
}

func TestCreateRoomDefaultsMaxParticipants(t *testing.T) {
	h, r := newTestHandlers()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader(`{"room_name":"Open"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint32(100), h.Room.Config().MaxParticipants)
}

func TestCreateRoomRejectsBadJSON(t *testing.T) {
	_, r := newTestHandlers()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadReturnsAttachment(t *testing.T) {
	_, r := newTestHandlers()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Hello World"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var att domain.FileAttachment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &att))
	assert.Equal(t, "notes.txt", att.Filename)
	assert.Equal(t, uint64(11), att.Size)
	assert.NotEmpty(t, att.MimeType)

	decoded, err := base64.StdEncoding.DecodeString(att.ContentBase64)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", string(decoded))
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	h, r := newTestHandlers()
	h.Cfg.MaxUploadSize = 4

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "big.bin")
	require.NoError(t, err)
	_, err = fw.Write([]byte("way too large"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestUploadRequiresFile(t *testing.T) {
	_, r := newTestHandlers()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackValidation(t *testing.T) {
	_, r := newTestHandlers()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(`{"rating":4,"comment":"nice"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Rating is bounded 1..5.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(`{"rating":9}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
