package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"messenger/domain"
	"messenger/errors"
	"messenger/publisher"
)

// sessionLoggedOut marks a user with no active session. 0 and -1 are
// both reserved: neither is ever issued as a live session id.
const sessionLoggedOut int64 = -1

// User is one registered account: credentials, session state, contacts,
// chat memberships and the publisher pushing updates to this account's
// client. The username is immutable; everything else is guarded by mu.
type User struct {
	username string
	password string

	mu        sync.Mutex
	sessionID int64
	contacts  []*User
	chats     []*Chat

	publisher *publisher.Publisher
	log       *slog.Logger
}

func newUser(username, password string, log *slog.Logger, deliveryTimeout time.Duration) *User {
	u := &User{
		username:  username,
		password:  password,
		sessionID: sessionLoggedOut,
		publisher: publisher.New(log, deliveryTimeout),
		log:       log,
	}

	// Baseline properties every account publishes from creation.
	for _, property := range []string{
		publisher.RegistryUpdater,
		publisher.ChatListUpdater,
		publisher.ContactListUpdater,
	} {
		if err := u.publisher.RegisterProperty(property); err != nil {
			log.Error("baseline property registration failed",
				"username", username, "property", property, "error", err)
		}
	}
	return u
}

func (u *User) Username() string {
	return u.username
}

// Publisher exposes the account's notification bus so the transport can
// attach and detach listener handles.
func (u *User) Publisher() *publisher.Publisher {
	return u.publisher
}

// login binds newSessionID iff the password matches. Listener wiring is
// not done here: it happens in the transport once a live callback handle
// exists for the connection.
func (u *User) login(password string, newSessionID int64) bool {
	if u.password != password {
		return false
	}
	u.mu.Lock()
	u.sessionID = newSessionID
	u.mu.Unlock()
	return true
}

// logout clears the session and drops every subscriber of the account's
// publisher: the callback handles of a logged-out client are dead, and a
// dead handle left in a subscriber list would eat a delivery timeout on
// every subsequent publish.
func (u *User) logout() {
	u.mu.Lock()
	u.sessionID = sessionLoggedOut
	u.mu.Unlock()
	u.publisher.DropSubscribers()
}

func (u *User) currentSessionID() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.sessionID
}

// addContact records candidate as a contact of u. The relation is
// one-directional: candidate does not learn about u. Returns false when
// candidate already is a contact.
func (u *User) addContact(candidate *User) (bool, error) {
	if candidate.username == u.username {
		return false, errors.ErrSelfContact
	}

	u.mu.Lock()
	for _, c := range u.contacts {
		if c.username == candidate.username {
			u.mu.Unlock()
			return false, nil
		}
	}
	u.contacts = append(u.contacts, candidate)
	names := u.contactNamesLocked()
	u.mu.Unlock()

	u.publisher.Publish(publisher.ContactListUpdater, nil, names)
	return true, nil
}

// removeContact drops the contact by name, best effort: an unknown name
// is ignored.
func (u *User) removeContact(contactName string) {
	u.mu.Lock()
	removed := false
	for i, c := range u.contacts {
		if c.username == contactName {
			u.contacts = append(u.contacts[:i:i], u.contacts[i+1:]...)
			removed = true
			break
		}
	}
	names := u.contactNamesLocked()
	u.mu.Unlock()

	if removed {
		u.publisher.Publish(publisher.ContactListUpdater, nil, names)
	}
}

func (u *User) contactNames() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.contactNamesLocked()
}

func (u *User) contactNamesLocked() []string {
	return lo.Map(u.contacts, func(c *User, _ int) string {
		return c.username
	})
}

func (u *User) contactByName(contactName string) (*User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, c := range u.contacts {
		if c.username == contactName {
			return c, nil
		}
	}
	return nil, errors.ErrContactNotFound
}

// addToChat registers u in chat: membership, the chat's two properties,
// and the announcements telling the client what appeared. Registry
// announcements carry the new property names so clients know what to
// subscribe to; the chat list announcement carries fresh snapshots.
func (u *User) addToChat(chat *Chat) {
	u.mu.Lock()
	u.chats = append(u.chats, chat)
	snapshots := u.snapshotsLocked()
	u.mu.Unlock()

	for _, property := range []string{
		publisher.ChatProperty(chat.ID()),
		publisher.ChatMembersProperty(chat.ID()),
	} {
		if err := u.publisher.RegisterProperty(property); err != nil {
			u.log.Error("chat property registration failed",
				"username", u.username, "property", property, "error", err)
			continue
		}
		u.publisher.Publish(publisher.RegistryUpdater, nil, property)
	}
	u.publisher.Publish(publisher.ChatListUpdater, nil, snapshots)
}

func (u *User) chatByID(chatID int64) (*Chat, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, c := range u.chats {
		if c.ID() == chatID {
			return c, nil
		}
	}
	return nil, errors.ErrChatNotFound
}

// sendMessage appends message to the chat identified by chatID, failing
// when u is not a member of it.
func (u *User) sendMessage(ctx context.Context, chatID int64, message domain.Message) error {
	chat, err := u.chatByID(chatID)
	if err != nil {
		return err
	}
	return chat.SendMessage(ctx, message)
}

// snapshots produces wire-safe copies of every chat u belongs to.
func (u *User) snapshots() []domain.ChatSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.snapshotsLocked()
}

func (u *User) snapshotsLocked() []domain.ChatSnapshot {
	return lo.Map(u.chats, func(c *Chat, _ int) domain.ChatSnapshot {
		return c.Snapshot()
	})
}

// getFile retrieves an attachment from the chat's storage, surfacing
// ErrFileNotFound unchanged.
func (u *User) getFile(ctx context.Context, chatID int64, filename string) ([]byte, error) {
	chat, err := u.chatByID(chatID)
	if err != nil {
		return nil, err
	}
	return chat.GetFile(ctx, filename)
}
