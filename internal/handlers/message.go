package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/contentapi/internal/domain/operr"
	"github.com/example/contentapi/internal/messages"
	"github.com/example/contentapi/internal/platform/logger"
)

// MessageHandler exposes the whole message catalogue on a single POST
// endpoint. The response contract is fixed: missing objects answer 404 with
// a null body, rejected requests answer 400 with a reason, everything else
// that fails is a 500.
type MessageHandler struct {
	dispatcher *messages.Dispatcher
	log        *logger.Logger
}

func NewMessageHandler(dispatcher *messages.Dispatcher, baseLog *logger.Logger) *MessageHandler {
	return &MessageHandler{
		dispatcher: dispatcher,
		log:        baseLog.With("handler", "MessageHandler"),
	}
}

func (h *MessageHandler) Handle(c *gin.Context) {
	var env messages.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": "request body is no valid message: " + err.Error()})
		return
	}
	if env.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": "message type is missing"})
		return
	}

	out, err := h.dispatcher.Dispatch(c.Request.Context(), env)
	if err != nil {
		h.respondError(c, env.Type, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MessageHandler) respondError(c *gin.Context, messageType string, err error) {
	switch operr.CodeOf(err) {
	case operr.CodeNotFound:
		c.JSON(http.StatusNotFound, nil)
	case operr.CodeBadRequest, operr.CodeUnsupportedType, operr.CodeInvalidInstance:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": operr.Reason(err)})
	default:
		h.log.Error("message failed", "type", messageType, "request_id", c.GetString("request_id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "reason": "internal server error"})
	}
}
