package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/jinzhu/copier"

	"github.com/cipherpuzzles/ccxc-website/pkg/errors"
	"github.com/cipherpuzzles/ccxc-website/pkg/fingerprint"
	"github.com/cipherpuzzles/ccxc-website/pkg/request"
	"github.com/cipherpuzzles/ccxc-website/pkg/session"
	"github.com/cipherpuzzles/ccxc-website/pkg/signature"
)

// Service wraps every backend endpoint the website uses. All calls except
// GetCaptcha go through the signed request pipeline.
type Service struct {
	client        *request.Client
	store         *session.Store
	userID        func() string
	captchaClient *http.Client
	logger        *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithUserIDFunc sets where the device identifier sent with account
// operations comes from
func WithUserIDFunc(fn func() string) Option {
	return func(s *Service) {
		s.userID = fn
	}
}

// WithCaptchaClient sets the HTTP client for captcha downloads
func WithCaptchaClient(client *http.Client) Option {
	return func(s *Service) {
		s.captchaClient = client
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates the API service. store receives the session on login
// and is normally the store client signs with.
func NewService(client *request.Client, store *session.Store, opts ...Option) *Service {
	s := &Service{
		client: client,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.userID == nil {
		collector := fingerprint.NewCollector(fingerprint.NewHostProbe(), fingerprint.WithLogger(s.logger))
		s.userID = collector.DeriveUserID
	}
	if s.captchaClient == nil {
		s.captchaClient = client.HTTPClient()
	}
	return s
}

// GetCaptcha downloads a captcha image. It is a plain unsigned GET and
// bypasses the status envelope.
func (s *Service) GetCaptcha(ctx context.Context) (*Captcha, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.BaseURL()+PathCaptcha, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRequestConfig, "failed to build captcha request")
	}

	resp, err := s.captchaClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNoResponse, "failed to fetch captcha")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.Newf(errors.ErrCodeServerError, "captcha request failed with status %d", resp.StatusCode).
			WithDetail(errors.DetailHTTPStatus, resp.StatusCode)
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNoResponse, "failed to read captcha")
	}

	return &Captcha{
		Image:       image,
		ContentType: resp.Header.Get("Content-Type"),
		Nonce:       resp.Header.Get(CaptchaNonceHeader),
	}, nil
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*request.Response, error) {
	var body registerRequest
	if err := copier.Copy(&body, &params); err != nil {
		return nil, errors.InternalWrap(err, "failed to map register params")
	}
	body.Pass = signature.PassHash(params.Pass)
	body.Userid = s.userID()
	return s.client.Post(ctx, PathRegister, body)
}

// Login authenticates and stores the returned session
func (s *Service) Login(ctx context.Context, params LoginParams) (*request.Response, error) {
	var body loginRequest
	if err := copier.Copy(&body, &params); err != nil {
		return nil, errors.InternalWrap(err, "failed to map login params")
	}
	body.Pass = signature.PassHash(params.Pass)
	body.Userid = s.userID()

	resp, err := s.client.Post(ctx, PathLogin, body)
	if err != nil {
		return nil, err
	}
	if err := s.startSession(resp); err != nil {
		return resp, err
	}
	return resp, nil
}

func (s *Service) GetDefaultSetting(ctx context.Context) (*DefaultSetting, error) {
	resp, err := s.client.Post(ctx, PathDefaultSetting, nil)
	if err != nil {
		return nil, err
	}
	var setting DefaultSetting
	if err := resp.Decode(&setting); err != nil {
		return nil, errors.InternalWrap(err, "failed to decode default setting")
	}
	return &setting, nil
}

// StartCompetition returns the path prefix of the puzzle area
func (s *Service) StartCompetition(ctx context.Context) (string, error) {
	resp, err := s.client.Post(ctx, PathStart, nil)
	if err != nil {
		return "", err
	}
	var out struct {
		StartPrefix string `json:"start_prefix"`
	}
	if err := resp.Decode(&out); err != nil {
		return "", errors.InternalWrap(err, "failed to decode start response")
	}
	return out.StartPrefix, nil
}

func (s *Service) SendActivationEmail(ctx context.Context, params EmailParams) (*request.Response, error) {
	return s.postEmail(ctx, PathSendActivationEmail, params)
}

func (s *Service) VerifyEmailToken(ctx context.Context, token string) (*request.Response, error) {
	return s.client.Post(ctx, PathVerifyEmailToken, tokenRequest{Token: token})
}

func (s *Service) SendResetPasswordEmail(ctx context.Context, params EmailParams) (*request.Response, error) {
	return s.postEmail(ctx, PathSendResetPasswordEmail, params)
}

// CheckResetPasswordToken returns the email the reset token belongs to
func (s *Service) CheckResetPasswordToken(ctx context.Context, token string) (string, error) {
	resp, err := s.client.Post(ctx, PathCheckResetPasswordToken, tokenRequest{Token: token})
	if err != nil {
		return "", err
	}
	var out struct {
		Email string `json:"email"`
	}
	if err := resp.Decode(&out); err != nil {
		return "", errors.InternalWrap(err, "failed to decode reset token response")
	}
	return out.Email, nil
}

func (s *Service) ResetPassword(ctx context.Context, params ResetPasswordParams) (*request.Response, error) {
	var body resetPasswordRequest
	if err := copier.Copy(&body, &params); err != nil {
		return nil, errors.InternalWrap(err, "failed to map reset password params")
	}
	body.Pass = signature.PassHash(params.Pass)
	body.Userid = s.userID()
	return s.client.Post(ctx, PathResetPassword, body)
}

func (s *Service) GetProfileInfo(ctx context.Context) (*request.Response, error) {
	return s.client.Post(ctx, PathProfileInfo, nil)
}

func (s *Service) EditUser(ctx context.Context, params EditUserParams) (*request.Response, error) {
	return s.client.Post(ctx, PathEditUser, params)
}

func (s *Service) CreateGroup(ctx context.Context, params GroupParams) (*request.Response, error) {
	return s.client.Post(ctx, PathCreateGroup, params)
}

func (s *Service) GetMyInvites(ctx context.Context) (*request.Response, error) {
	return s.client.Post(ctx, PathMyInvites, nil)
}

func (s *Service) DeclineInvite(ctx context.Context, iid int) (*request.Response, error) {
	return s.client.Post(ctx, PathDeclineInvite, inviteRequest{Iid: iid})
}

func (s *Service) AcceptInvite(ctx context.Context, iid int) (*request.Response, error) {
	return s.client.Post(ctx, PathAcceptInvite, inviteRequest{Iid: iid})
}

func (s *Service) RemoveGroupMember(ctx context.Context, uid int) (*request.Response, error) {
	return s.client.Post(ctx, PathRemoveGroupMember, map[string]int{"uid": uid})
}

func (s *Service) EditGroup(ctx context.Context, params GroupParams) (*request.Response, error) {
	return s.client.Post(ctx, PathEditGroup, params)
}

func (s *Service) DeleteGroup(ctx context.Context) (*request.Response, error) {
	return s.client.Post(ctx, PathDeleteGroup, nil)
}

func (s *Service) ExitGroup(ctx context.Context) (*request.Response, error) {
	return s.client.Post(ctx, PathExitGroup, nil)
}

func (s *Service) SearchNoGroupUser(ctx context.Context, keyword string) (*request.Response, error) {
	return s.client.Post(ctx, PathSearchNoGroupUser, map[string]string{"kw_uname": keyword})
}

func (s *Service) SendInvite(ctx context.Context, username string) (*request.Response, error) {
	return s.client.Post(ctx, PathSendInvite, map[string]string{"username": username})
}

func (s *Service) GetSentInvites(ctx context.Context) (*request.Response, error) {
	return s.client.Post(ctx, PathSentInvites, nil)
}

func (s *Service) InvalidateInvite(ctx context.Context, iid int) (*request.Response, error) {
	return s.client.Post(ctx, PathInvalidateInvite, inviteRequest{Iid: iid})
}

func (s *Service) SSOCheck(ctx context.Context, params SSOCheckParams) (*request.Response, error) {
	return s.client.Post(ctx, PathSSOCheck, params)
}

// SSOLogin exchanges the device identifier for a session and stores it
func (s *Service) SSOLogin(ctx context.Context) (*request.Response, error) {
	resp, err := s.client.Post(ctx, PathSSOLogin, map[string]string{"userid": s.userID()})
	if err != nil {
		return nil, err
	}
	if err := s.startSession(resp); err != nil {
		return resp, err
	}
	return resp, nil
}

func (s *Service) GetScoreboardInfo(ctx context.Context) (*request.Response, error) {
	return s.client.Post(ctx, PathScoreboard, nil)
}

func (s *Service) GetAnnouncements(ctx context.Context) (*request.Response, error) {
	return s.client.Post(ctx, PathAnnouncements, nil)
}

func (s *Service) GetArticle(ctx context.Context, path string) (*request.Response, error) {
	return s.client.Post(ctx, PathArticle, map[string]string{"path": path})
}

// Logout forgets the session locally. The backend keeps no logout endpoint.
func (s *Service) Logout() error {
	s.logger.Info("Logging out", "session", s.store.Snapshot())
	if err := s.store.Clear(); err != nil {
		return errors.InternalWrap(err, "failed to clear session")
	}
	return nil
}

// Session returns the current session record
func (s *Service) Session() session.Record {
	return s.store.Snapshot()
}

func (s *Service) postEmail(ctx context.Context, path string, params EmailParams) (*request.Response, error) {
	var body emailRequest
	if err := copier.Copy(&body, &params); err != nil {
		return nil, errors.InternalWrap(err, "failed to map email params")
	}
	body.Userid = s.userID()
	return s.client.Post(ctx, path, body)
}

// startSession copies the session fields of a login response into the store
func (s *Service) startSession(resp *request.Response) error {
	var payload sessionPayload
	if err := resp.Decode(&payload); err != nil {
		return errors.InternalWrap(err, "failed to decode session from login response")
	}

	var record session.Record
	if err := copier.Copy(&record, &payload); err != nil {
		return errors.InternalWrap(err, "failed to map session")
	}
	if !record.IsLive() {
		s.logger.Warn("Login response carried no usable credentials", "session", record)
	}

	if err := s.store.Set(record); err != nil {
		return errors.InternalWrap(err, "failed to persist session")
	}
	s.logger.Info("Session started", "session", record)
	return nil
}
