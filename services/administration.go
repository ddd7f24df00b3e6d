// Package services holds the server-side session, chat and notification
// subsystem: the Administration registry every remote call passes
// through, the User accounts it manages, and the Chats they share.
package services

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"messenger/contract"
	"messenger/domain"
	"messenger/errors"
)

const (
	// SessionFailed is returned by Login and Register instead of an
	// error when credentials are rejected, so clients can tell "bad
	// credentials" from "server unreachable".
	SessionFailed int64 = -1

	// maxSessionID leaves headroom before the counter wraps back to 1.
	maxSessionID = math.MaxInt64 - 1
)

// IAdministration is the complete remote-call surface exposed to client
// collaborators, plus the listener wiring the notification transport
// needs.
type IAdministration interface {
	Register(username, password string) (int64, error)
	Login(username, password string) (int64, error)
	Logout(sessionID int64) error
	Username(sessionID int64) (string, error)
	AddContact(sessionID int64, contactName string) (bool, error)
	RemoveContact(sessionID int64, contactName string) error
	GetContacts(sessionID int64) ([]string, error)
	NewChat(sessionID int64, contactName string) error
	SendMessage(ctx context.Context, sessionID, chatID int64, message domain.Message) error
	GetParticipatingChats(sessionID int64) ([]domain.ChatSnapshot, error)
	GetFile(ctx context.Context, sessionID, chatID int64, filename string) ([]byte, error)

	Subscribe(sessionID int64, listener contract.PropertyListener, property string) error
	Unsubscribe(sessionID int64, listener contract.PropertyListener, property string) error
	DetachListener(sessionID int64, listener contract.PropertyListener) error
	Properties(sessionID int64) ([]string, error)
}

// Administration is the in-memory registry of users and sessions.
// Session allocation, uniqueness checking and user lookup are not
// individually atomic, so every mutation funnels through one coarse
// mutex. Notification fan-out always happens outside it. This is a
// deliberate scalability ceiling: shard by username hash if throughput
// ever matters.
type Administration struct {
	mu            sync.Mutex
	users         map[string]*User
	nextSessionID int64

	chatIDs         *chatIDAllocator
	storage         contract.FileStorage
	deliveryTimeout time.Duration
	log             *slog.Logger
}

func NewAdministration(log *slog.Logger, storage contract.FileStorage,
	deliveryTimeout time.Duration) *Administration {
	return &Administration{
		users:           make(map[string]*User),
		nextSessionID:   1,
		chatIDs:         &chatIDAllocator{},
		storage:         storage,
		deliveryTimeout: deliveryTimeout,
		log:             log,
	}
}

// Register creates the account and immediately logs it in. A taken
// username yields SessionFailed, not an error: the name being taken is
// an expected outcome, not a fault.
func (a *Administration) Register(username, password string) (int64, error) {
	if username == "" || password == "" {
		return SessionFailed, errors.ErrEmptyCredentials
	}

	a.mu.Lock()
	if _, taken := a.users[username]; taken {
		a.mu.Unlock()
		return SessionFailed, nil
	}
	a.users[username] = newUser(username, password, a.log, a.deliveryTimeout)
	a.mu.Unlock()

	a.log.Info("user registered", "username", username)
	return a.Login(username, password)
}

// Login validates credentials and binds the next free session id.
// Unknown usernames and wrong passwords both yield SessionFailed.
func (a *Administration) Login(username, password string) (int64, error) {
	if username == "" || password == "" {
		return SessionFailed, errors.ErrEmptyCredentials
	}

	a.mu.Lock()
	user, ok := a.users[username]
	if !ok {
		a.mu.Unlock()
		return SessionFailed, nil
	}

	candidate := a.nextFreeSessionIDLocked()
	if !user.login(password, candidate) {
		a.mu.Unlock()
		return SessionFailed, nil
	}
	a.nextSessionID = candidate + 1
	if a.nextSessionID >= maxSessionID {
		a.nextSessionID = 1
	}
	a.mu.Unlock()

	a.log.Info("user logged in", "username", username, "session_id", candidate)
	return candidate, nil
}

// nextFreeSessionIDLocked advances past ids still bound to logged-in
// users. Identifier space wraps long before exhaustion in practice, so
// the scan almost always returns immediately.
func (a *Administration) nextFreeSessionIDLocked() int64 {
	candidate := a.nextSessionID
	for {
		if candidate >= maxSessionID {
			candidate = 1
		}
		inUse := false
		for _, u := range a.users {
			if u.currentSessionID() == candidate {
				inUse = true
				break
			}
		}
		if !inUse {
			return candidate
		}
		candidate++
	}
}

// Logout invalidates the session and drops the account's dead
// subscriber handles.
func (a *Administration) Logout(sessionID int64) error {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return err
	}
	user.logout()
	a.log.Info("user logged out", "username", user.Username())
	return nil
}

// Username resolves the account name behind a live session. Message
// authorship always comes from here, never from the request body.
func (a *Administration) Username(sessionID int64) (string, error) {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return "", err
	}
	return user.Username(), nil
}

// AddContact records contactName as a contact of the calling user.
// Returns false both for an unknown username and an existing contact;
// adding yourself is an error.
func (a *Administration) AddContact(sessionID int64, contactName string) (bool, error) {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return false, err
	}

	a.mu.Lock()
	contact, exists := a.users[contactName]
	a.mu.Unlock()
	if !exists {
		return false, nil
	}
	return user.addContact(contact)
}

// RemoveContact is best effort: removing a name that is not a contact
// does nothing.
func (a *Administration) RemoveContact(sessionID int64, contactName string) error {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return err
	}
	user.removeContact(contactName)
	return nil
}

func (a *Administration) GetContacts(sessionID int64) ([]string, error) {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	return user.contactNames(), nil
}

// NewChat opens a pairwise chat between the calling user and one of its
// contacts. Both participants are registered into the chat and their
// clients notified through their own publishers.
func (a *Administration) NewChat(sessionID int64, contactName string) error {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return err
	}
	contact, err := user.contactByName(contactName)
	if err != nil {
		return err
	}

	chat := newChat(a.chatIDs.Next(), a.storage, a.log, user, contact)
	a.log.Info("chat created",
		"chat_id", chat.ID(),
		"participants", chat.participantNames())
	return nil
}

// SendMessage appends message to the chat, provided the calling user is
// a member of it.
func (a *Administration) SendMessage(ctx context.Context, sessionID, chatID int64, message domain.Message) error {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return err
	}
	return user.sendMessage(ctx, chatID, message)
}

func (a *Administration) GetParticipatingChats(sessionID int64) ([]domain.ChatSnapshot, error) {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	return user.snapshots(), nil
}

// GetFile fetches an attachment through the chat's storage bridge,
// surfacing ErrFileNotFound unchanged.
func (a *Administration) GetFile(ctx context.Context, sessionID, chatID int64, filename string) ([]byte, error) {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	return user.getFile(ctx, chatID, filename)
}

// Subscribe attaches a listener handle to one of the calling user's
// registered properties.
func (a *Administration) Subscribe(sessionID int64, listener contract.PropertyListener, property string) error {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return err
	}
	return user.Publisher().Subscribe(listener, property)
}

func (a *Administration) Unsubscribe(sessionID int64, listener contract.PropertyListener, property string) error {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return err
	}
	user.Publisher().Unsubscribe(listener, property)
	return nil
}

// DetachListener removes a connection's handle from every property it
// subscribed to. Called when the connection closes.
func (a *Administration) DetachListener(sessionID int64, listener contract.PropertyListener) error {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return err
	}
	user.Publisher().UnsubscribeAll(listener)
	return nil
}

// Properties lists the calling user's registered property names, the
// bootstrap for clients deciding what to subscribe to.
func (a *Administration) Properties(sessionID int64) ([]string, error) {
	user, err := a.userBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	return user.Publisher().Properties(), nil
}

// userBySessionID resolves a live session, rejecting the reserved
// sentinels outright. Returning a typed error instead of nil forces
// every caller to handle the not-found case.
func (a *Administration) userBySessionID(sessionID int64) (*User, error) {
	if sessionID == 0 || sessionID == sessionLoggedOut {
		return nil, errors.ErrInvalidSession
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.users {
		if u.currentSessionID() == sessionID {
			return u, nil
		}
	}
	return nil, errors.ErrInvalidSession
}
