// Package viewcache implements the cache-and-revalidate pattern over keyed
// views of a backing store.
//
// A view is read through Get, which serves cached data after the first
// fetch. Mutations go through Update, which runs the backing mutation and
// then refetches the affected key before returning:
//
//	chats := viewcache.New(func(ctx context.Context, _ struct{}) ([]Chat, error) {
//		return store.ListChats(ctx)
//	})
//
//	err := chats.Update(ctx, struct{}{}, func(ctx context.Context) error {
//		_, err := store.CreateChat(ctx, params)
//		return err
//	})
//	// err == nil guarantees a subsequent Get reflects the new chat.
//
// Every key owns a mutation lock: mutate-then-refetch sequences for one key
// are strictly serialized, so a stale refetch can never overwrite the result
// of a newer mutation. Distinct keys are fully independent.
//
// Fetch failures never destroy cached data: the view keeps its last
// known-good value and records the error for readers.
package viewcache
