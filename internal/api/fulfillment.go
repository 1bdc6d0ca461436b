package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-voice/backend/internal/fulfillment"
	"github.com/pageza/alchemorsel-voice/backend/internal/types"
)

// Fulfiller fulfills one decoded turn
type Fulfiller interface {
	Handle(ctx context.Context, event *types.Event) types.Response
}

// FulfillmentHandler serves the code-hook endpoint over HTTP
type FulfillmentHandler struct {
	fulfiller Fulfiller
	logger    *zap.Logger
}

func NewFulfillmentHandler(fulfiller Fulfiller, logger *zap.Logger) *FulfillmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FulfillmentHandler{fulfiller: fulfiller, logger: logger}
}

// RegisterRoutes mounts the endpoint; middleware runs only on this route
func (h *FulfillmentHandler) RegisterRoutes(router *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, middleware...), h.Fulfill)
	router.POST("/fulfillment", handlers...)
}

// Fulfill decodes the event and returns the envelope. Undecodable events
// get a 400 that still carries a well-formed fallback envelope.
func (h *FulfillmentHandler) Fulfill(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		h.reject(c, err)
		return
	}

	event, err := types.ParseEvent(data)
	if err != nil {
		h.reject(c, err)
		return
	}

	c.JSON(http.StatusOK, h.fulfiller.Handle(c.Request.Context(), event))
}

func (h *FulfillmentHandler) reject(c *gin.Context, err error) {
	_ = c.Error(err)
	h.logger.Warn("rejected fulfillment request", zap.Error(err))
	c.JSON(http.StatusBadRequest, fulfillment.Fallback())
}

// Health reports liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
