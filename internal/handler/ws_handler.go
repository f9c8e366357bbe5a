/*
Package handler provides the HTTP handler for WebSocket connection upgrading.

All room traffic is in-band after the upgrade: the first thing a client sends
is a JOIN envelope naming the room and username.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"driftchat/internal/app/chat"
	"driftchat/internal/pkg/errs"
	"driftchat/internal/pkg/limiter"
	"driftchat/internal/pkg/logx"
	"driftchat/internal/pkg/resp"
)

// HandleWebSocket upgrades the connection and starts the client pumps. Room
// membership is negotiated in-band via JOIN messages, not at upgrade time.
func HandleWebSocket(hub *chat.Hub, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(hub, conn)
		hub.AttachConnection(client)

		go client.WritePump()
		client.ReadPump()
	}
}
