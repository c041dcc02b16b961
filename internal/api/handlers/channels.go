package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/rally/internal/channels"
)

type ChannelHandler struct {
	channels *channels.Service
	logger   *slog.Logger
}

func NewChannelHandler(channelService *channels.Service, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{channels: channelService, logger: logger}
}

// List handles GET /api/v1/channels
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.channels.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "", list)
}
