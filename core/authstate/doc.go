// Package authstate models authentication-state transitions as explicit
// events with a deterministic delivery order.
//
// A Subject holds the current principal (uuid.Nil when anonymous) and
// notifies subscribers exactly once per actual transition, synchronously and
// in subscription order. Components that must react to login/logout in a
// fixed sequence (the transfer coordinator before any session re-resolution)
// subscribe in that sequence instead of relying on incidental scheduling:
//
//	subject := authstate.NewSubject()
//	subject.Subscribe(func(ctx context.Context, t authstate.Transition) {
//		if t.SignedIn() {
//			coordinator.TransferOnAuth(ctx)
//		}
//	})
//
//	// Called by the authentication flow after login succeeds:
//	subject.Set(ctx, userID)
//
// Setting the same principal repeatedly produces no events, so Subject can
// be fed from polling code without deduplication on the caller side.
package authstate
