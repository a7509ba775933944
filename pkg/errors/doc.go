// Package errors provides structured errors with codes for the ccxc client.
//
// Every failure that leaves the request pipeline is an *Error whose Code
// tells the caller which branch produced it and whose Message is the text
// the backend (or the pipeline) wants shown to the user.
//
// # Error Codes
//
// Protocol errors, from the backend status envelope:
//   - ErrCodeRequestFailed (status 2)
//   - ErrCodeRedirected (status 3)
//   - ErrCodeSessionInvalidated (status 4 and 13)
//   - ErrCodeNotActivated (status 31)
//   - ErrCodeUnknownStatus (anything else)
//
// Transport errors:
//   - ErrCodeServerError (HTTP error status without an envelope)
//   - ErrCodeNoResponse (no response received, including timeouts)
//   - ErrCodeRequestConfig (the request could not be built)
//
// # Inspection
//
//	resp, err := client.Post(ctx, "/v1/user-login", body)
//	if errors.IsCode(err, errors.ErrCodeNotActivated) {
//		original, _ := errors.GetResponse(err)
//		// original is the *request.Response the backend sent
//	}
//
//	msg := errors.GetMessage(err) // server message, e.g. "banned"
//
// Generic codes:
//   - ErrCodeInternal (local failures such as decoding or file writes)
//   - ErrCodeInvalidInput (bad command line input)
//
// The standard library errors.Is(err, context.DeadlineExceeded) sees
// through an ErrCodeNoResponse error.
package errors
