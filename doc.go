// Package chatkit is the session and chat toolkit behind coomb's AI resume
// chat: visitors talk to the assistant before creating an account, and their
// conversation follows them through registration.
//
// The core packages implement the client-side protocol:
//
//   - core/session: anonymous session resolution, the one-time transfer of a
//     session's data to an authenticated user, and the durable token cache
//     holding the current session id.
//   - core/authstate: authentication state transitions delivered exactly
//     once, in order, to every subscriber.
//   - core/viewcache: the cache-and-revalidate primitive. Reads serve cached
//     data; mutations force a synchronous refetch of the affected view.
//   - core/chat: chat and message types plus Sync, the cached view layer the
//     presentation code reads from.
//   - core/resume: the resume snapshot an anonymous session carries and the
//     transfer imports.
//
// The integration packages supply the backing services: the coomb REST API
// client (integration/api), the server-side Postgres stores and Redis token
// cache (integration/database), assistant responders for OpenAI and Google
// (integration/ai), and S3 storage for generated resume PDFs
// (integration/storage/s3).
package chatkit
