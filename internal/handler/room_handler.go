/*
Package handler provides HTTP handler functions for room creation and
existence checks.
*/
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"driftchat/internal/app/chat"
	"driftchat/internal/pkg/errs"
	"driftchat/internal/pkg/logx"
	"driftchat/internal/pkg/randx"
	"driftchat/internal/pkg/req"
	"driftchat/internal/pkg/resp"
)

// maxNameLength bounds room display names and usernames in create requests.
const maxNameLength = 64

// CreateRoomInput is the request body for room creation.
type CreateRoomInput struct {
	// RoomName is the display name of the room.
	RoomName string `json:"roomName"`

	// Username is the display name of the creating user, recorded as host.
	Username string `json:"username"`
}

// HandleCreateRoom processes room creation requests.
func HandleCreateRoom(hub *chat.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateRoomInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.RoomName = strings.TrimSpace(input.RoomName)
		input.Username = strings.TrimSpace(input.Username)

		if input.RoomName == "" || input.Username == "" ||
			len(input.RoomName) > maxNameLength || len(input.Username) > maxNameLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		roomID, err := hub.CreateRoom(input.RoomName, input.Username)
		if err != nil {
			logx.Error(err, "Failed to create room")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"roomId": roomID,
		})
	}
}

// HandleCheckRoom reports whether a room id refers to a live room.
func HandleCheckRoom(hub *chat.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomId")

		if !randx.IsValidRoomID(roomID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"exists": hub.RoomExists(roomID),
		})
	}
}
