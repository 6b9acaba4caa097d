// Package session implements the anonymous-session lifecycle and the
// ownership-transfer protocol that lets a visitor chat before creating an
// account without losing the conversation when they register.
//
// # Components
//
//   - Session: the anonymous identity issued by the backing store
//   - Store: interface to the session backing service (create/get/transfer)
//   - TokenCache: the single durable client-side slot holding the session id
//   - Manager: resolves the current session, reusing a valid cached id or
//     creating a new one
//   - Coordinator: performs the one-time transfer on authentication and
//     guarantees the cache slot is empty afterwards
//   - Tracker: binds both to authstate transitions and exposes reactive
//     session state
//
// # Usage
//
//	subject := authstate.NewSubject()
//	cache := session.NewMemoryCache()
//	manager := session.NewManager(store, cache,
//		session.WithSource("web"),
//		session.WithPrincipalSource(subject.Current),
//	)
//	coordinator := session.NewCoordinator(store, cache)
//	tracker := session.NewTracker(subject, manager, coordinator)
//	defer tracker.Close()
//
//	if err := tracker.Start(ctx); err != nil {
//		// degrade: chat features requiring a session stay disabled
//	}
//
//	// After login or registration succeeds:
//	subject.Set(ctx, userID)
//	// tracker has already run the transfer by the time Set returns.
//
// # Failure policy
//
// Session and transfer failures are infrastructure concerns handled by
// silent recovery: validation errors degrade to session recreation, transfer
// errors clear the cache and are never retried, and neither blocks the login
// flow. Only a failed session creation surfaces, as ErrSessionUnavailable.
package session
