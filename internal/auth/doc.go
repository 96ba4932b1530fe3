// Package auth implements the OAuth authorization code login as an explicit state machine.
//
//	Anonymous -> Redirecting -> AwaitingCallback -> Exchanging -> Authenticated
//	                                  |                  |
//	                                  +----> Failed <----+
//
// [Flow.Begin] builds the provider URL. [Flow.HandleCallback] validates the redirect query and
// trades the code with the backend exactly once per code, then writes the session to the store
// and mirrors it into the [SessionSink]. Nothing is persisted on any failure path.
package auth
