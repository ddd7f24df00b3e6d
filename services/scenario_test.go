package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"messenger/domain"
	"messenger/publisher"
)

// TestScenario_AliceMessagesBob walks the whole happy path: register,
// add contact, open a chat, send a message, and observe both the pulled
// snapshot and the pushed notifications on bob's side.
func TestScenario_AliceMessagesBob(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	admin := newTestAdministration(newFakeStorage())

	// bob exists first, then alice registers and adds him.
	bobSession, err := admin.Register("bob", "hunter2")
	req.NoError(err)
	aliceSession, err := admin.Register("alice", "pw1")
	req.NoError(err)

	added, err := admin.AddContact(aliceSession, "bob")
	req.NoError(err)
	req.True(added)

	// bob's client comes online and subscribes to its baseline
	// properties before any chat exists.
	bobListener := &recordingListener{}
	req.NoError(admin.Subscribe(bobSession, bobListener, publisher.RegistryUpdater))
	req.NoError(admin.Subscribe(bobSession, bobListener, publisher.ChatListUpdater))

	req.NoError(admin.NewChat(aliceSession, "bob"))

	// bob is told which new properties appeared and got a fresh chat
	// list, without asking for either.
	registryEvents := bobListener.forProperty(publisher.RegistryUpdater)
	req.Len(registryEvents, 2)
	chatListEvents := bobListener.forProperty(publisher.ChatListUpdater)
	req.Len(chatListEvents, 1)

	bobChats, err := admin.GetParticipatingChats(bobSession)
	req.NoError(err)
	req.Len(bobChats, 1)
	chatID := bobChats[0].ChatID

	// bob subscribes to the chat's message property announced above.
	chatProperty := publisher.ChatProperty(chatID)
	req.NoError(admin.Subscribe(bobSession, bobListener, chatProperty))

	message, err := domain.NewTextMessage("alice", "hi")
	req.NoError(err)
	req.NoError(admin.SendMessage(ctx, aliceSession, chatID, message))

	// Pull path: bob's snapshot carries the message.
	bobChats, err = admin.GetParticipatingChats(bobSession)
	req.NoError(err)
	req.Len(bobChats[0].Messages, 1)
	req.Equal("alice", bobChats[0].Messages[0].Author)
	req.Equal("hi", bobChats[0].Messages[0].Text)

	// Push path: bob's listener received the updated snapshot.
	chatEvents := bobListener.forProperty(chatProperty)
	req.Len(chatEvents, 1)
	snapshot, ok := chatEvents[0].NewValue.(domain.ChatSnapshot)
	req.True(ok)
	req.Len(snapshot.Messages, 1)
	req.Equal("hi", snapshot.Messages[0].Text)
}

// TestScenario_LogoutDropsSubscriptions checks the chosen logout policy:
// a logged-out client's handles are detached from every property.
func TestScenario_LogoutDropsSubscriptions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	admin := newTestAdministration(newFakeStorage())

	aliceSession, bobSession, chatID := pairedChat(t, admin)

	bobListener := &recordingListener{}
	req.NoError(admin.Subscribe(bobSession, bobListener, publisher.ChatProperty(chatID)))

	req.NoError(admin.Logout(bobSession))

	message, err := domain.NewTextMessage("alice", "anyone there?")
	req.NoError(err)
	req.NoError(admin.SendMessage(ctx, aliceSession, chatID, message))

	req.Empty(bobListener.received())

	// bob logs back in with a fresh session and resubscribes.
	newSession, err := admin.Login("bob", "pw2")
	req.NoError(err)
	req.NotEqual(SessionFailed, newSession)
	req.NoError(admin.Subscribe(newSession, bobListener, publisher.ChatProperty(chatID)))

	followUp, err := domain.NewTextMessage("alice", "welcome back")
	req.NoError(err)
	req.NoError(admin.SendMessage(ctx, aliceSession, chatID, followUp))
	req.Len(bobListener.received(), 1)
}
