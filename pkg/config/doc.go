// Package config loads the client configuration.
//
// Settings come from environment variables, optionally layered over a
// yaml, toml, edn or .env file read with cleanenv:
//
//	CCXC_BACKEND_ROOT      backend root URL (default http://localhost:8080)
//	CCXC_REQUEST_TIMEOUT   per-request timeout (default 15s)
//	CCXC_DATA_DIR          session storage directory (default ~/.ccxc)
//	CCXC_USER_AGENT        user agent sent and fingerprinted
//	CCXC_SCREEN_WIDTH      reported screen width
//	CCXC_SCREEN_HEIGHT     reported screen height
//	CCXC_LOG_LEVEL         debug, info, warn or error (default info)
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		slog.Error("Invalid configuration", "error", err)
//		os.Exit(1)
//	}
//
// Validation follows the collect-then-report style of ValidationErrors, so
// one run lists every bad variable.
package config
