// Package sec provides authentication primitives for the stand-in
// marketplace.
//
// # Authentication
//
// The browser logs in through a form and receives a session cookie; the REST
// surface accepts HTTP Basic Auth. Both paths validate credentials against
// bcrypt password hashes stored in the database.
//
// # Components
//
//   - [Authenticate]: Validates Basic Auth credentials against the user store
//   - [CheckPassword]: Validates a username and password pair
//   - [NewSessionToken]: Generates an opaque session token
//   - [GetAuthenticatedUser], [SetAuthenticatedUser]: Context accessors for user info
//   - [HashPassword], [ComparePassword]: bcrypt password hashing utilities
package sec
