package publisher

import "fmt"

// Well-known property names every user publisher carries from creation.
const (
	// RegistryUpdater announces newly available property names clients
	// should subscribe to, and "removed:" prefixed names when a
	// property disappears.
	RegistryUpdater = "registryUpdater"
	// ChatListUpdater carries the full snapshot list of chats the user
	// participates in.
	ChatListUpdater = "chatListUpdater"
	// ContactListUpdater carries the full contact name list.
	ContactListUpdater = "contactListUpdater"

	removedPrefix = "removed:"
)

// ChatProperty is the per-chat message log property.
func ChatProperty(chatID int64) string {
	return fmt.Sprintf("chat_%d", chatID)
}

// ChatMembersProperty is the per-chat participant list property.
func ChatMembersProperty(chatID int64) string {
	return fmt.Sprintf("chat_%d_members", chatID)
}

// Removed marks a property name as gone in a RegistryUpdater
// announcement.
func Removed(property string) string {
	return removedPrefix + property
}
