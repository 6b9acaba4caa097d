// Package api provides the HTTP client for the coomb REST API.
//
// Client implements both core/session.Store and core/chat.Store, so the
// session manager, transfer coordinator, and chat synchronization layer all
// talk to the backend through one client:
//
//	client, err := api.New(api.Config{BaseURL: "https://api.coomb.app"},
//		api.WithTokenSource(auth.AccessToken),
//	)
//
//	manager := session.NewManager(client, cache)
//	sync := chat.NewSync(client, chat.WithEnabled(tracker.HasSession))
//
// HTTP statuses are translated into the core sentinel errors: a 404 on a
// session endpoint is session.ErrNotFound, a 409 on transfer is
// session.ErrAlreadyTransferred, a 404 on a chat endpoint is
// chat.ErrChatNotFound. Callers never inspect responses directly.
package api
