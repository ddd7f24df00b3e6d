package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"messenger/domain"
	"messenger/errors"
	"messenger/publisher"
)

// pairedChat registers alice and bob, makes bob a contact of alice and
// opens a chat between them.
func pairedChat(t *testing.T, admin *Administration) (aliceSession, bobSession, chatID int64) {
	t.Helper()
	req := require.New(t)

	aliceSession, err := admin.Register("alice", "pw1")
	req.NoError(err)
	bobSession, err = admin.Register("bob", "pw2")
	req.NoError(err)

	added, err := admin.AddContact(aliceSession, "bob")
	req.NoError(err)
	req.True(added)
	req.NoError(admin.NewChat(aliceSession, "bob"))

	chats, err := admin.GetParticipatingChats(aliceSession)
	req.NoError(err)
	req.Len(chats, 1)
	return aliceSession, bobSession, chats[0].ChatID
}

func TestAdministration_NewChat(t *testing.T) {
	t.Run("should register both participants", func(t *testing.T) {
		req := require.New(t)
		admin := newTestAdministration(newFakeStorage())
		aliceSession, bobSession, chatID := pairedChat(t, admin)

		aliceChats, err := admin.GetParticipatingChats(aliceSession)
		req.NoError(err)
		req.Len(aliceChats, 1)

		bobChats, err := admin.GetParticipatingChats(bobSession)
		req.NoError(err)
		req.Len(bobChats, 1)
		req.Equal(chatID, bobChats[0].ChatID)
	})

	t.Run("snapshot display name should never contain the viewer", func(t *testing.T) {
		req := require.New(t)
		admin := newTestAdministration(newFakeStorage())
		aliceSession, bobSession, _ := pairedChat(t, admin)

		aliceChats, err := admin.GetParticipatingChats(aliceSession)
		req.NoError(err)
		req.Equal("bob", aliceChats[0].DisplayName("alice"))

		bobChats, err := admin.GetParticipatingChats(bobSession)
		req.NoError(err)
		req.Equal("alice", bobChats[0].DisplayName("bob"))
	})

	t.Run("should fail when the target is not a contact", func(t *testing.T) {
		req := require.New(t)
		admin := newTestAdministration(newFakeStorage())

		aliceSession, err := admin.Register("alice", "pw1")
		req.NoError(err)
		_, err = admin.Register("bob", "pw2")
		req.NoError(err)

		// bob exists but was never added as a contact
		req.ErrorIs(admin.NewChat(aliceSession, "bob"), errors.ErrContactNotFound)
	})

	t.Run("should register the chat properties on both publishers", func(t *testing.T) {
		req := require.New(t)
		admin := newTestAdministration(newFakeStorage())
		aliceSession, bobSession, chatID := pairedChat(t, admin)

		for _, sessionID := range []int64{aliceSession, bobSession} {
			properties, err := admin.Properties(sessionID)
			req.NoError(err)
			req.Contains(properties, publisher.ChatProperty(chatID))
			req.Contains(properties, publisher.ChatMembersProperty(chatID))
		}
	})
}

func TestAdministration_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("should preserve send order in the log", func(t *testing.T) {
		req := require.New(t)
		admin := newTestAdministration(newFakeStorage())
		aliceSession, bobSession, chatID := pairedChat(t, admin)

		first, err := domain.NewTextMessage("alice", "first")
		req.NoError(err)
		second, err := domain.NewTextMessage("bob", "second")
		req.NoError(err)

		req.NoError(admin.SendMessage(ctx, aliceSession, chatID, first))
		req.NoError(admin.SendMessage(ctx, bobSession, chatID, second))

		chats, err := admin.GetParticipatingChats(aliceSession)
		req.NoError(err)
		messages := chats[0].Messages
		req.Len(messages, 2)
		req.Equal("first", messages[0].Text)
		req.Equal("second", messages[1].Text)
	})

	t.Run("should fail for a chat the sender is not in", func(t *testing.T) {
		req := require.New(t)
		admin := newTestAdministration(newFakeStorage())

		carolSession, err := admin.Register("carol", "pw3")
		req.NoError(err)

		message, err := domain.NewTextMessage("carol", "hello?")
		req.NoError(err)
		req.ErrorIs(admin.SendMessage(ctx, carolSession, 999, message), errors.ErrChatNotFound)
	})

	t.Run("file message should land in the file storage", func(t *testing.T) {
		req := require.New(t)
		storage := newFakeStorage()
		admin := newTestAdministration(storage)
		aliceSession, _, chatID := pairedChat(t, admin)

		payload := []byte("picture bytes")
		message, err := domain.NewFileMessage("alice", "holiday.png", payload)
		req.NoError(err)
		req.NoError(admin.SendMessage(ctx, aliceSession, chatID, message))

		stored, err := storage.GetFile(ctx, "holiday.png")
		req.NoError(err)
		req.Equal(payload, stored)
	})

	t.Run("storage failure should not lose the message", func(t *testing.T) {
		req := require.New(t)
		storage := newFakeStorage()
		admin := newTestAdministration(storage)
		aliceSession, _, chatID := pairedChat(t, admin)

		storage.fail = true
		message, err := domain.NewFileMessage("alice", "holiday.png", []byte("bytes"))
		req.NoError(err)
		req.NoError(admin.SendMessage(ctx, aliceSession, chatID, message))

		chats, err := admin.GetParticipatingChats(aliceSession)
		req.NoError(err)
		req.Len(chats[0].Messages, 1)
		req.Equal("holiday.png", chats[0].Messages[0].Filename)
	})
}

func TestAdministration_GetFile(t *testing.T) {
	ctx := context.Background()

	t.Run("should fetch a stored attachment", func(t *testing.T) {
		req := require.New(t)
		storage := newFakeStorage()
		admin := newTestAdministration(storage)
		aliceSession, bobSession, chatID := pairedChat(t, admin)

		payload := []byte("attachment")
		message, err := domain.NewFileMessage("alice", "doc.pdf", payload)
		req.NoError(err)
		req.NoError(admin.SendMessage(ctx, aliceSession, chatID, message))

		fetched, err := admin.GetFile(ctx, bobSession, chatID, "doc.pdf")
		req.NoError(err)
		req.Equal(payload, fetched)
	})

	t.Run("should surface file-not-found unchanged", func(t *testing.T) {
		req := require.New(t)
		admin := newTestAdministration(newFakeStorage())
		aliceSession, _, chatID := pairedChat(t, admin)

		_, err := admin.GetFile(ctx, aliceSession, chatID, "missing.bin")
		req.ErrorIs(err, errors.ErrFileNotFound)
	})

	t.Run("should reject a chat the caller is not in", func(t *testing.T) {
		req := require.New(t)
		admin := newTestAdministration(newFakeStorage())

		carolSession, err := admin.Register("carol", "pw3")
		req.NoError(err)

		_, err = admin.GetFile(ctx, carolSession, 1, "any")
		req.ErrorIs(err, errors.ErrChatNotFound)
	})
}
