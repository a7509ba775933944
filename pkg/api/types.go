package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strconv"
)

// Backend endpoints
const (
	PathCaptcha                 = "/v1/getcaptcha"
	PathRegister                = "/v1/user-reg"
	PathLogin                   = "/v1/user-login"
	PathDefaultSetting          = "/v1/get-default-setting"
	PathStart                   = "/v1/start"
	PathSendActivationEmail     = "/v1/user-email-activate"
	PathVerifyEmailToken        = "/v1/email-verify-check-token"
	PathSendResetPasswordEmail  = "/v1/send-reset-pass-email"
	PathCheckResetPasswordToken = "/v1/reset-pass-check-token"
	PathResetPassword           = "/v1/reset-password"
	PathProfileInfo             = "/v1/get-profileInfo"
	PathEditUser                = "/v1/edit-user"
	PathCreateGroup             = "/v1/create-group"
	PathMyInvites               = "/v1/list-my-invite"
	PathDeclineInvite           = "/v1/decline-invite"
	PathAcceptInvite            = "/v1/accept-invite"
	PathRemoveGroupMember       = "/v1/remove-group-member"
	PathEditGroup               = "/v1/edit-group"
	PathDeleteGroup             = "/v1/delete-group"
	PathExitGroup               = "/v1/exit-group"
	PathSearchNoGroupUser       = "/v1/search-no-group-user"
	PathSendInvite              = "/v1/send-invite"
	PathSentInvites             = "/v1/list-sent-invites"
	PathInvalidateInvite        = "/v1/invalidate-invite"
	PathSSOCheck                = "/v1/sso-check"
	PathSSOLogin                = "/v1/sso-login"
	PathScoreboard              = "/v1/get-scoreboard-info"
	PathAnnouncements           = "/v1/get-announcement"
	PathArticle                 = "/v1/get-article"
)

// CaptchaNonceHeader carries the nonce that must accompany the solved code
const CaptchaNonceHeader = "X-Captcha-Nonce"

// RegisterParams are the registration form fields. Pass is plaintext.
type RegisterParams struct {
	Username string
	Email    string
	Pass     string
	Code     string
	Nonce    string
}

// LoginParams are the login form fields. Pass is plaintext.
type LoginParams struct {
	Email string
	Pass  string
	Code  string
	Nonce string
}

// EmailParams identify an account by email behind a captcha
type EmailParams struct {
	Email string
	Code  string
	Nonce string
}

// ResetPasswordParams complete a reset started by email. Pass is plaintext.
type ResetPasswordParams struct {
	Token string
	Pass  string
	Code  string
	Nonce string
}

type EditUserParams struct {
	Username   string `json:"username"`
	Profile    string `json:"profile"`
	ThemeColor string `json:"theme_color"`
}

type GroupParams struct {
	Groupname string `json:"groupname"`
	Profile   string `json:"profile"`
}

type SSOCheckParams struct {
	Token       string `json:"token"`
	CallbackURL string `json:"callback_url"`
}

// wire bodies; filled from the params above with copier
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Pass     string `json:"pass"`
	Code     string `json:"code"`
	Nonce    string `json:"nonce"`
	Userid   string `json:"userid"`
}

type loginRequest struct {
	Email  string `json:"email"`
	Pass   string `json:"pass"`
	Code   string `json:"code"`
	Nonce  string `json:"nonce"`
	Userid string `json:"userid"`
}

type emailRequest struct {
	Email  string `json:"email"`
	Code   string `json:"code"`
	Nonce  string `json:"nonce"`
	Userid string `json:"userid"`
}

type resetPasswordRequest struct {
	Token  string `json:"token"`
	Pass   string `json:"pass"`
	Code   string `json:"code"`
	Nonce  string `json:"nonce"`
	Userid string `json:"userid"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type inviteRequest struct {
	Iid int `json:"iid"`
}

// DefaultSetting is the public competition configuration
type DefaultSetting struct {
	ProjectName string `json:"project_name"`
	StartTime   int64  `json:"start_time"`
	StartType   int    `json:"start_type"`
	GuestMode   int    `json:"guest_mode"`
}

// Captcha is a captcha image and its nonce
type Captcha struct {
	Image       []byte
	ContentType string
	Nonce       string
}

// DataURI returns the image inlined as a data URI
func (c *Captcha) DataURI() string {
	contentType := c.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(c.Image)
}

// sessionPayload is the session part of a login response
type sessionPayload struct {
	Uid      looseString `json:"uid"`
	Username looseString `json:"username"`
	Roleid   int         `json:"roleid"`
	Token    looseString `json:"token"`
	Sk       looseString `json:"sk"`
	Etc      looseString `json:"etc"`
	Color    looseString `json:"color"`
}

// looseString accepts a JSON string, number, boolean or null
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*s = looseString(data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
			return err
		}
		*s = looseString(n.String())
	}
	return nil
}
