// Package fingerprint derives a stable anonymous user identifier from
// environment signals.
//
// A Probe supplies the signals; HostProbe reads them from the local machine
// and tests supply their own. The identifier is the SHA-256 hex digest of
// the canonical JSON payload:
//
//	id := fingerprint.DeriveUserID(fingerprint.NewHostProbe(
//		fingerprint.WithUserAgent(cfg.UserAgent),
//		fingerprint.WithScreen(cfg.ScreenWidth, cfg.ScreenHeight),
//	))
//
// DeriveUserID never fails. When collection breaks it returns the digest of
// a random fallback string, which is not stable across calls.
package fingerprint
