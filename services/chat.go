package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"

	"messenger/contract"
	"messenger/domain"
	"messenger/publisher"
)

// Chat is one conversation: an append-only message log shared by a fixed
// set of participants, bridged to the external file storage for
// attachments. The log is guarded by its own lock so message order in
// one chat never depends on traffic in another.
type Chat struct {
	id           int64
	subscription string
	participants []*User

	mu       sync.Mutex
	messages []domain.Message

	storage contract.FileStorage
	log     *slog.Logger
}

// newChat wires a pairwise conversation between self and other: both are
// registered as members and subscribed to the chat's update properties
// via addToChat. The participant list stays a slice so a group-chat
// generalization only touches construction.
func newChat(id int64, storage contract.FileStorage, log *slog.Logger, self, other *User) *Chat {
	c := &Chat{
		id:           id,
		subscription: publisher.ChatProperty(id),
		participants: []*User{self, other},
		storage:      storage,
		log:          log,
	}
	for _, p := range c.participants {
		p.addToChat(c)
	}
	return c
}

func (c *Chat) ID() int64 {
	return c.id
}

// SubscriptionName is the property clients subscribe to for this chat's
// message log updates.
func (c *Chat) SubscriptionName() string {
	return c.subscription
}

// SendMessage appends message to the log and notifies every participant
// with a fresh snapshot. File payloads are stored first; a storage
// failure is logged and the message still appended, so a flaky file
// service degrades attachments without losing conversation history.
func (c *Chat) SendMessage(ctx context.Context, message domain.Message) error {
	if message.Kind == domain.KindFile {
		if err := c.storage.StoreData(ctx, message.Filename, message.Data); err != nil {
			c.log.Error("attachment store failed",
				"chat_id", c.id, "filename", message.Filename, "error", err)
		}
	}

	c.mu.Lock()
	c.messages = append(c.messages, message)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.informParticipants(snapshot)
	return nil
}

// GetFile retrieves an attachment, propagating ErrFileNotFound verbatim.
func (c *Chat) GetFile(ctx context.Context, filename string) ([]byte, error) {
	return c.storage.GetFile(ctx, filename)
}

// Snapshot produces the wire-safe copy of the chat.
func (c *Chat) Snapshot() domain.ChatSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Chat) snapshotLocked() domain.ChatSnapshot {
	messages := make([]domain.Message, len(c.messages))
	copy(messages, c.messages)
	return domain.ChatSnapshot{
		ChatID:           c.id,
		Participants:     c.participantNames(),
		Messages:         messages,
		SubscriptionName: c.subscription,
	}
}

// DisplayName is the comma-joined list of all participants except
// forUsername: how each client derives who it is talking to.
func (c *Chat) DisplayName(forUsername string) string {
	others := lo.FilterMap(c.participants, func(p *User, _ int) (string, bool) {
		return p.Username(), p.Username() != forUsername
	})
	return strings.Join(others, ", ")
}

func (c *Chat) participantNames() []string {
	return lo.Map(c.participants, func(p *User, _ int) string {
		return p.Username()
	})
}

// informParticipants fans the updated snapshot out on every
// participant's per-chat property. Each participant's publisher isolates
// its own listener failures.
func (c *Chat) informParticipants(snapshot domain.ChatSnapshot) {
	for _, p := range c.participants {
		p.Publisher().Publish(c.subscription, nil, snapshot)
	}
}
