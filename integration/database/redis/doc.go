// Package redis provides Redis client initialization and the Redis-backed
// token cache for anonymous session ids.
//
// Connect validates the connection URL, retries with backoff, and verifies
// connectivity with a ping before returning the client. Healthcheck returns
// a probe function for readiness endpoints.
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL: "redis://localhost:6379/0",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// TokenCache implements core/session.TokenCache for clients without local
// storage of their own (CLI tools, bots). Each client id owns one namespaced
// slot holding its current anonymous session id:
//
//	cache, err := redis.NewTokenCache(client, clientID)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManager(store, cache)
//
// Both redis:// and rediss:// (TLS) URL schemes are supported. Errors wrap
// the underlying go-redis failures behind stable sentinels checked with
// errors.Is.
package redis
