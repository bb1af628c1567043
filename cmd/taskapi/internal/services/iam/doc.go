// Package iam authenticates API requests.
//
// A request carrying "Authorization: Bearer <jwt>" is resolved to a Principal
// in four steps, each with its own failure reason:
//
//	header present?      no  -> MissingHeader
//	"Bearer <token>"?    no  -> MalformedHeader
//	HS256 token valid?   no  -> InvalidOrExpiredToken
//	username resolves?   no  -> UserNotFound
//	                     yes -> Principal
//
// Failures are rendered as 401 JSON bodies by OnAuthenticationFailure and
// never surface as panics. Only a Principal backed by a validated token and
// an existing user is ever produced.
package iam
