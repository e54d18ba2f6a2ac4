package handlers

import (
	"encoding/json"

	"github.com/coralpress/notifications/internal/domain"
	"github.com/coralpress/notifications/internal/messages"
)

func init() {
	Register("account-events", "ACCOUNT_REGISTERED", handleAccountRegistered)
}

// handleAccountRegistered sends a targeted welcome to the new account.
func handleAccountRegistered(data []byte) *domain.EventNotification {
	var env struct {
		EventType string `json:"eventType"`
		EventID   string `json:"eventId"`
		Payload   struct {
			UserID string `json:"userId"`
			Name   string `json:"name"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	if env.Payload.UserID == "" {
		return nil
	}

	name := env.Payload.Name
	if name == "" {
		name = "there"
	}
	title, body := messages.Welcome(name)
	userID := env.Payload.UserID
	return &domain.EventNotification{
		UserID:        &userID,
		Role:          domain.RoleUser,
		Title:         title,
		Message:       body,
		SourceEventID: env.EventID,
	}
}
