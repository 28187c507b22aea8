package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jask/jasktodo/internal/store"
)

const maxTextSize = 4 << 10

type taskJSON struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type listResponse struct {
	Version uint64     `json:"version"`
	Tasks   []taskJSON `json:"tasks"`
}

type textRequest struct {
	Text *string `json:"text"`
}

func toJSON(t store.Task) taskJSON {
	return taskJSON{ID: string(t.ID), Text: t.Text}
}

func (s *Server) handleList(c *gin.Context) {
	snap, err := s.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := listResponse{Version: snap.Version(), Tasks: make([]taskJSON, 0, snap.Len())}
	for _, t := range snap.Tasks() {
		out.Tasks = append(out.Tasks, toJSON(t))
	}
	c.JSON(http.StatusOK, out)
}

// bindText reads {"text": "..."}; text may be empty but must be present.
func bindText(c *gin.Context) (string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxTextSize)
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return "", false
	}
	if req.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return "", false
	}
	return *req.Text, true
}

func (s *Server) handleCreate(c *gin.Context) {
	text, ok := bindText(c)
	if !ok {
		return
	}
	t, err := s.store.Create(c.Request.Context(), text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toJSON(t))
}

func (s *Server) handleUpdate(c *gin.Context) {
	text, ok := bindText(c)
	if !ok {
		return
	}
	found, err := s.store.Update(c.Request.Context(), store.ID(c.Param("id")), text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": found})
}

func (s *Server) handleDelete(c *gin.Context) {
	found, err := s.store.Delete(c.Request.Context(), store.ID(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": found})
}
