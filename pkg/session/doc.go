// Package session keeps the signed-in identity of the ccxc client.
//
// A Record holds the user id, display name, role, session token, the
// shared secret used to sign requests, an auxiliary string and the UI
// color. The record is live when both token and secret are set.
//
// # Basic Usage
//
//	storage, err := session.NewFileStorage(cfg.DataDir)
//	if err != nil {
//		return err
//	}
//	store := session.NewStore(storage)
//
//	// after a successful login
//	err = store.Set(session.Record{Uid: "42", Token: token, Sk: sk})
//
//	if store.IsLive() {
//		// requests will be signed
//	}
//
//	// logout or forced invalidation
//	err = store.Clear()
//
// Every mutation is written to storage under StorageKey as JSON with
// exactly the seven record fields. NewStore restores that record; corrupt
// or missing data silently yields an empty session.
package session
