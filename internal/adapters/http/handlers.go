package http

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/juncto/meet/internal/config"
	"github.com/juncto/meet/internal/core"
	"github.com/juncto/meet/internal/domain"
	"github.com/juncto/meet/internal/protocol"
)

// Handlers are the thin HTTP collaborators around the session core. The
// only one that touches room state is CreateRoom, via the reset operation.
type Handlers struct {
	Room *core.Room
	Cfg  *config.Config
}

// CreateRoom resets the singleton room with a fresh configuration. Clients
// still attached to the previous room are told it ended first.
func (h *Handlers) CreateRoom(c *gin.Context) {
	cfg := domain.DefaultRoomConfig()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room config"})
		return
	}
	if cfg.MaxParticipants == 0 {
		cfg.MaxParticipants = 100
	}

	if ended, err := protocol.Marshal(protocol.SRoomEnded, nil); err == nil {
		h.Room.Stream().Publish(core.Event{Kind: core.KindRoomEnded, Frame: ended})
	}
	applied := h.Room.Reset(cfg)

	roomID := fmt.Sprintf("room-%s", uuid.NewString())
	log.Info().Str("module", "adapters.http").Str("room_id", roomID).Str("name", applied.RoomName).Msg("room created")
	c.JSON(http.StatusCreated, gin.H{
		"room_id": roomID,
		"config":  applied,
		"status":  "created",
	})
}

func (h *Handlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Upload accepts a multipart file and returns it as an inline attachment
// ready to be embedded in a chat message.
func (h *Handlers) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	if fh.Size > h.Cfg.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.Cfg.MaxUploadSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read file"})
		return
	}

	mime := fh.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	c.JSON(http.StatusOK, domain.FileAttachment{
		Filename:      fh.Filename,
		MimeType:      mime,
		Size:          uint64(len(data)),
		ContentBase64: base64.StdEncoding.EncodeToString(data),
	})
}

// Feedback records a post-meeting rating. Nothing is persisted; the entry
// is logged for operators.
func (h *Handlers) Feedback(c *gin.Context) {
	var fb domain.Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback"})
		return
	}
	ev := log.Info().Str("module", "adapters.http").Int("rating", fb.Rating)
	if fb.UserID != nil {
		ev = ev.Str("user", *fb.UserID)
	}
	ev.Str("comment", fb.Comment).Msg("feedback received")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
