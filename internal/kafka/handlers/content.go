package handlers

import (
	"encoding/json"

	"github.com/coralpress/notifications/internal/domain"
	"github.com/coralpress/notifications/internal/messages"
)

func init() {
	Register("content-events", "CONTENT_PUBLISHED", handleContentPublished)
	Register("content-events", "CONTENT_FLAGGED", handleContentFlagged)
}

type contentEnv struct {
	EventType string `json:"eventType"`
	EventID   string `json:"eventId"`
	Payload   struct {
		ContentID string `json:"contentId"`
		Title     string `json:"title"`
		Author    string `json:"author"`
		Reason    string `json:"reason"`
	} `json:"payload"`
}

func parseContentEnv(data []byte) (*contentEnv, bool) {
	var env contentEnv
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false
	}
	if env.Payload.Title == "" {
		return nil, false
	}
	return &env, true
}

// handleContentPublished notifies editors that a piece went live.
func handleContentPublished(data []byte) *domain.EventNotification {
	env, ok := parseContentEnv(data)
	if !ok {
		return nil
	}
	title, body := messages.ContentPublished(env.Payload.Title, env.Payload.Author)
	return &domain.EventNotification{
		Role:          domain.RoleEditor,
		Title:         title,
		Message:       body,
		SourceEventID: env.EventID,
	}
}

// handleContentFlagged notifies admins that moderation is needed.
func handleContentFlagged(data []byte) *domain.EventNotification {
	env, ok := parseContentEnv(data)
	if !ok {
		return nil
	}
	reason := env.Payload.Reason
	if reason == "" {
		reason = "no reason given"
	}
	title, body := messages.ContentFlagged(env.Payload.Title, reason)
	return &domain.EventNotification{
		Role:          domain.RoleAdmin,
		Title:         title,
		Message:       body,
		SourceEventID: env.EventID,
	}
}
