// Package api exposes the CCXC backend endpoints as typed calls.
//
// Account operations hash the password with signature.PassHash and attach
// the device identifier from the fingerprint package. Login and SSO login
// store the returned session so later calls are signed:
//
//	svc := api.NewService(client, store)
//	if _, err := svc.Login(ctx, api.LoginParams{Email: email, Pass: pass, Code: code, Nonce: captcha.Nonce}); err != nil {
//		return err
//	}
//	profile, err := svc.GetProfileInfo(ctx)
package api
