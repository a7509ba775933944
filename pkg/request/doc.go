// Package request is the signed request pipeline between the client and the
// CCXC backend.
//
// Every call is a JSON POST (unless another method is asked for). When the
// session store holds both a token and a secret the request carries
//
//	User-Token: <token>
//	X-Auth-Token: Ccxc-Auth <ts> <signature>
//
// where the signature covers the exact body bytes sent. Responses are read
// as a status envelope and routed through a fixed transition table:
//
//	client := request.NewClient(cfg.BackendRoot, store,
//		request.WithNotifier(notifier),
//		request.WithNavigator(history),
//	)
//	resp, err := client.Post(ctx, "/v1/get-user", nil)
//	if errors.IsCode(err, errors.ErrCodeNotActivated) {
//		original, _ := errors.GetResponse(err)
//		...
//	}
package request
