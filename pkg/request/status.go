package request

import (
	"github.com/cipherpuzzles/ccxc-website/pkg/errors"
	"github.com/cipherpuzzles/ccxc-website/pkg/notification"
)

// Action is what the pipeline does with a response status
type Action int

const (
	// ActionUnknown: generic error notification, reject
	ActionUnknown Action = iota
	// ActionResolve: hand the body to the caller
	ActionResolve
	// ActionFail: error notification, reject with the server message
	ActionFail
	// ActionRedirect: warning notification, navigate to location, reject
	ActionRedirect
	// ActionEndSession: clear the session, navigate to the notice route, reject
	ActionEndSession
	// ActionNotActivated: reject with the original response attached, nothing else
	ActionNotActivated
)

var actionNames = map[Action]string{
	ActionUnknown:      "unknown",
	ActionResolve:      "resolve",
	ActionFail:         "fail",
	ActionRedirect:     "redirect",
	ActionEndSession:   "end_session",
	ActionNotActivated: "not_activated",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "invalid"
}

// Backend status codes. The numbering is a closed contract with the server.
const (
	StatusOK           = 0
	StatusOKAlt        = 1
	StatusFailed       = 2
	StatusRedirect     = 3
	StatusLoggedOut    = 4
	StatusUserChanged  = 13
	StatusNotActivated = 31
)

// Transition describes the reaction to one status
type Transition struct {
	Action Action
	// Notify is the notification kind shown, empty for none
	Notify notification.Kind
	// Code is the error code of the rejection; empty when resolving
	Code errors.ErrorCode
}

var transitions = map[int]Transition{
	StatusOK:           {Action: ActionResolve},
	StatusOKAlt:        {Action: ActionResolve},
	StatusFailed:       {Action: ActionFail, Notify: notification.Error, Code: errors.ErrCodeRequestFailed},
	StatusRedirect:     {Action: ActionRedirect, Notify: notification.Warning, Code: errors.ErrCodeRedirected},
	StatusLoggedOut:    {Action: ActionEndSession, Code: errors.ErrCodeSessionInvalidated},
	StatusUserChanged:  {Action: ActionEndSession, Code: errors.ErrCodeSessionInvalidated},
	StatusNotActivated: {Action: ActionNotActivated, Code: errors.ErrCodeNotActivated},
}

var unknownTransition = Transition{Action: ActionUnknown, Notify: notification.Error, Code: errors.ErrCodeUnknownStatus}

// TransitionFor returns the reaction to status
func TransitionFor(status int) Transition {
	if t, ok := transitions[status]; ok {
		return t
	}
	return unknownTransition
}

// transitionForResponse also sends a body without a status down the
// unknown branch, whatever its zero value would map to.
func transitionForResponse(resp *Response) Transition {
	if !resp.HasStatus {
		return unknownTransition
	}
	return TransitionFor(resp.Status)
}

// User-facing texts
const (
	msgUnknown           = "未知错误"
	msgNotActivated      = "用户未激活"
	msgAccountChanged    = "账户状态发生变化"
	msgAccountChangedMsg = "您的账户状态发生变化，请重新登录"
	msgServerError       = "服务器错误 (%d)"
	msgNoResponse        = "服务器无响应"
	msgRequestConfig     = "请求配置错误"
)
