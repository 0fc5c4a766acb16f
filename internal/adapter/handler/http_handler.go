package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"

	maxBodyBytes = 1 << 20
)

type HTTPHandler struct {
	dispatcher *Dispatcher
}

func NewHTTPHandler(dispatcher *Dispatcher) *HTTPHandler {
	return &HTTPHandler{dispatcher: dispatcher}
}

// Register mounts the routes on r.
func (h *HTTPHandler) Register(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/tools", h.ListTools)
	r.POST("/tools/:name", h.CallTool)
}

func (h *HTTPHandler) CallTool(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResult("invalid request body"))
		return
	}

	result, err := h.dispatcher.Call(c.Request.Context(), Call{
		Tool:      c.Param("name"),
		Arguments: body,
		UserID:    c.GetHeader(HeaderUserID),
		RequestID: c.GetHeader(HeaderRequestID),
	})
	if errors.Is(err, ErrUnknownTool) {
		c.JSON(http.StatusNotFound, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *HTTPHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.dispatcher.ListTools()})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
