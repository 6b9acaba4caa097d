// Package chat defines the chat and message domain types, the backing Store
// contract, and Sync, the cached synchronization layer the presentation code
// reads from.
//
// Sync wraps a Store with viewcache views: one fixed-key view for the chat
// list and one view per chat for its messages. Reads return the cached
// snapshot; mutations call the store and then refetch the affected view
// before returning, so code awaiting CreateMessage immediately observes the
// new message in Messages:
//
//	sync := chat.NewSync(apiClient, chat.WithEnabled(tracker.HasSession))
//
//	msg, err := sync.CreateMessage(ctx, chatID, chat.CreateMessageParams{
//		Role:    chat.RoleUser,
//		Content: "improve my summary section",
//	})
//
// While the enabled gate reports false every operation is a no-op with a
// neutral empty result and the store is never called. SearchMessages is
// read-only and bypasses the cache entirely.
package chat
