package domain

import (
	"strings"

	"github.com/samber/lo"
)

// ChatSnapshot is the wire-safe copy of a chat: participants, the full
// message log and the property name clients subscribe to for updates.
// It never references live server objects.
type ChatSnapshot struct {
	ChatID           int64     `json:"chat_id"`
	Participants     []string  `json:"participants"`
	Messages         []Message `json:"messages"`
	SubscriptionName string    `json:"subscription_name"`
}

// DisplayName is how a client labels the conversation: every participant
// except the viewer, comma-joined.
func (s ChatSnapshot) DisplayName(forUsername string) string {
	others := lo.Filter(s.Participants, func(name string, _ int) bool {
		return name != forUsername
	})
	return strings.Join(others, ", ")
}
