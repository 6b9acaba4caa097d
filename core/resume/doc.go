// Package resume defines the resume snapshot an anonymous session carries.
//
// The snapshot is stored as a JSON document next to the session record and is
// imported to the user's account when the session is transferred. It is a
// transfer payload, not a schema: only the fields the import needs exist here.
package resume
