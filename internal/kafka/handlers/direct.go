package handlers

import (
	"encoding/json"

	"github.com/coralpress/notifications/internal/domain"
)

func init() {
	RegisterDirect("notification-commands", handleDirectCommand)
}

// handleDirectCommand accepts a fully-formed create command from other
// services. Role defaults to "all" for broadcasts without one; commands with
// an unknown role are dropped here rather than failing later validation.
func handleDirectCommand(data []byte) *domain.EventNotification {
	var cmd struct {
		CommandID string `json:"commandId"`
		Title     string `json:"title"`
		Message   string `json:"message"`
		Role      string `json:"role"`
		UserID    string `json:"userId"`
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil
	}

	role := domain.Role(cmd.Role)
	if cmd.Role == "" {
		role = domain.RoleAll
	}
	if !role.Valid() {
		return nil
	}

	ev := &domain.EventNotification{
		Role:          role,
		Title:         cmd.Title,
		Message:       cmd.Message,
		SourceEventID: cmd.CommandID,
	}
	if cmd.UserID != "" {
		ev.UserID = &cmd.UserID
	}
	return ev
}
