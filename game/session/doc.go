// Package session provides session management for the memory game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - One game controller per session, wired to the shared score store
//   - Session cleanup and expiration
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive. IDs are generated with crypto/rand and regenerated on
// collision.
//
// Concurrency:
//
// The manager guards its map with a RWMutex and hands out copies of the
// session record. The controller inside is shared and does its own locking.
//
// Usage:
//
//	manager := session.NewManager(
//		session.WithStore(scores),
//		session.WithPresenterFactory(hub.PresenterFor),
//	)
//
//	sess, err := manager.Create(service.NewSession{ConfigID: "cosmic", Config: theme})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess.Controller.Click(0)
//
// Cleanup:
//
// Deleting or expiring a session closes its controller, which cancels the
// round's tick and any pending mismatch or victory callback.
package session
