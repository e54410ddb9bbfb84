package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

const defaultOperationTimeout = 10 * time.Second

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	Apps      ports.ApplicationRepository
	Users     ports.AppUserRepository
	Blacklist *BlacklistFilter
	Ledger    *LicenseLedger
	Guard     *DeviceGuard
	Sessions  *SessionTracker
	Activity  ports.ActivityRecorder
	Hasher    *PasswordHasher
	// Timeout bounds the store calls of a single operation.
	Timeout time.Duration
}

// AuthService is the auth decision engine. It sequences the blacklist,
// license, guard and session components for every call and resolves every
// failure into a *domain.AuthError.
type AuthService struct {
	apps      ports.ApplicationRepository
	users     ports.AppUserRepository
	blacklist *BlacklistFilter
	ledger    *LicenseLedger
	guard     *DeviceGuard
	sessions  *SessionTracker
	activity  ports.ActivityRecorder
	hasher    *PasswordHasher
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func NewAuthService(deps AuthDeps, log zerolog.Logger) *AuthService {
	if deps.Timeout <= 0 {
		deps.Timeout = defaultOperationTimeout
	}
	return &AuthService{
		apps:      deps.Apps,
		users:     deps.Users,
		blacklist: deps.Blacklist,
		ledger:    deps.Ledger,
		guard:     deps.Guard,
		sessions:  deps.Sessions,
		activity:  deps.Activity,
		hasher:    deps.Hasher,
		timeout:   deps.Timeout,
		now:       time.Now,
		log:       log,
	}
}

// Register creates an app user under a license key.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if in.Username == "" || in.Password == "" {
		return nil, domain.Fail(domain.ErrInvalidInput, domain.MsgInvalidInput)
	}

	app, err := s.resolveApplication(ctx, in.APIKey)
	if err != nil {
		return nil, err
	}
	email := NormalizeIdentity(domain.BlacklistEmail, in.Email)

	base := domain.ActivityLog{
		ApplicationID: app.ID,
		IP:            in.IP,
		Hwid:          in.Hwid,
		UserAgent:     in.UserAgent,
		Metadata:      map[string]any{"username": in.Username},
	}

	hit, err := s.blacklist.FirstMatch(ctx, app.ID,
		domain.Identity{Type: domain.BlacklistIP, Value: in.IP},
		domain.Identity{Type: domain.BlacklistUsername, Value: in.Username},
		domain.Identity{Type: domain.BlacklistEmail, Value: email},
		domain.Identity{Type: domain.BlacklistHwid, Value: in.Hwid},
	)
	if err != nil {
		return nil, s.unavailable(err, "register")
	}
	if hit != nil {
		s.record(ctx, base, domain.RegisterBlockedEvent(hit.Type), false, domain.MsgBlacklisted)
		return nil, domain.Fail(domain.ErrBlacklisted, domain.MsgBlacklisted)
	}

	lic, err := s.ledger.Validate(ctx, in.LicenseKey, app.ID)
	if err != nil {
		if fail := licenseFailure(err); fail != nil {
			s.record(ctx, base, domain.EventRegisterFailed, false, fail.Message)
			return nil, fail
		}
		return nil, s.unavailable(err, "register")
	}

	taken, err := s.users.Exists(ctx, app.ID, in.Username, email)
	if err != nil {
		return nil, s.unavailable(err, "register")
	}
	if taken {
		s.record(ctx, base, domain.EventRegisterFailed, false, domain.MsgDuplicateUser)
		return nil, domain.Fail(domain.ErrDuplicateUser, domain.MsgDuplicateUser)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.log.Warn().Err(err).Str("application_id", app.ID).Msg("password hash rejected")
		return nil, domain.Fail(domain.ErrInvalidInput, domain.MsgInvalidInput)
	}

	if err := s.ledger.Consume(ctx, lic.ID); err != nil {
		if errors.Is(err, domain.ErrLicenseFull) {
			s.record(ctx, base, domain.EventRegisterFailed, false, domain.MsgLicenseFull)
			return nil, domain.Fail(domain.ErrLicenseFull, domain.MsgLicenseFull)
		}
		return nil, s.unavailable(err, "register")
	}

	now := s.now().UTC()
	expires := lic.ExpiresAt
	user := &domain.AppUser{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		LicenseKeyID:  lic.ID,
		Username:      in.Username,
		PasswordHash:  hash,
		Email:         email,
		Active:        true,
		ExpiresAt:     &expires,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.releaseSlot(ctx, lic.ID)
		if isConflict(err) {
			s.record(ctx, base, domain.EventRegisterFailed, false, domain.MsgDuplicateUser)
			return nil, domain.Fail(domain.ErrDuplicateUser, domain.MsgDuplicateUser)
		}
		return nil, s.unavailable(err, "register")
	}

	base.AppUserID = user.ID
	base.Metadata["license_key_id"] = lic.ID
	s.record(ctx, base, domain.EventUserRegister, true, "")

	s.log.Info().Str("application_id", app.ID).Str("user_id", user.ID).Msg("app user registered")
	return &ports.AuthResult{Message: domain.MsgRegistered, UserID: user.ID}, nil
}

// Login authenticates an app user. Checks run in a fixed order and the first
// failing one decides the response:
//
//	blacklisted → not-found → inactive → paused → expired →
//	version-mismatch → hwid-mismatch → bad-password → ok
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	app, err := s.resolveApplication(ctx, in.APIKey)
	if err != nil {
		return nil, err
	}
	msgs := app.Messages.WithDefaults()

	base := domain.ActivityLog{
		ApplicationID: app.ID,
		IP:            in.IP,
		Hwid:          in.Hwid,
		UserAgent:     in.UserAgent,
		Metadata:      map[string]any{"username": in.Username},
	}

	hit, err := s.blacklist.FirstMatch(ctx, app.ID,
		domain.Identity{Type: domain.BlacklistIP, Value: in.IP},
		domain.Identity{Type: domain.BlacklistUsername, Value: in.Username},
		domain.Identity{Type: domain.BlacklistHwid, Value: in.Hwid},
	)
	if err != nil {
		return nil, s.unavailable(err, "login")
	}
	if hit != nil {
		s.record(ctx, base, domain.LoginBlockedEvent(hit.Type), false, domain.MsgBlacklisted)
		return nil, domain.Fail(domain.ErrBlacklisted, domain.MsgBlacklisted)
	}

	user, err := s.users.FindByUsername(ctx, app.ID, in.Username)
	if err != nil {
		if isNotFound(err) {
			s.hasher.CompareDummy(in.Password)
			s.record(ctx, base, domain.EventLoginFailed, false, msgs.LoginFailed)
			return nil, domain.Fail(domain.ErrUserNotFound, msgs.LoginFailed)
		}
		return nil, s.unavailable(err, "login")
	}
	base.AppUserID = user.ID

	now := s.now().UTC()
	if fail, event := s.checkStatus(user, msgs, now); fail != nil {
		s.record(ctx, base, event, false, fail.Message)
		return nil, fail
	}

	decision := s.guard.Evaluate(app, user, in.Version, in.Hwid)
	if decision.Reason != nil {
		fail, event := guardFailure(decision.Reason, msgs)
		if errors.Is(decision.Reason, domain.ErrVersionMismatch) {
			base.Metadata["version"] = in.Version
		}
		s.record(ctx, base, event, false, fail.Message)
		return nil, fail
	}

	if !s.hasher.Compare(user.PasswordHash, in.Password) {
		if err := s.users.RecordFailedAttempt(ctx, user.ID, now); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record login attempt")
		}
		s.record(ctx, base, domain.EventLoginFailed, false, msgs.LoginFailed)
		return nil, domain.Fail(domain.ErrBadPassword, msgs.LoginFailed)
	}

	// Commit phase: only reached after the password matched.
	if decision.NeedsBind {
		if err := s.guard.Bind(ctx, user, in.Hwid); err != nil {
			if errors.Is(err, domain.ErrHwidMismatch) {
				s.record(ctx, base, domain.EventHwidMismatch, false, msgs.HwidMismatch)
				return nil, domain.Fail(domain.ErrHwidMismatch, msgs.HwidMismatch)
			}
			return nil, s.unavailable(err, "login")
		}
		s.record(ctx, base, domain.EventHwidBound, true, "")
	}

	if err := s.users.RecordLogin(ctx, user.ID, in.IP, now); err != nil {
		return nil, s.unavailable(err, "login")
	}

	token, err := s.sessions.Create(ctx, app.ID, user.ID, domain.SessionMeta{
		IP:        in.IP,
		Hwid:      in.Hwid,
		UserAgent: in.UserAgent,
	})
	if err != nil {
		return nil, s.unavailable(err, "login")
	}

	s.record(ctx, base, domain.EventUserLogin, true, "")
	return &ports.AuthResult{Message: msgs.LoginSuccess, UserID: user.ID, SessionToken: token}, nil
}

// Verify checks a session token and refreshes its last activity.
func (s *AuthService) Verify(ctx context.Context, sessionToken string) (*ports.AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := s.sessions.Touch(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSession) {
			return nil, domain.Fail(domain.ErrInvalidSession, domain.MsgInvalidSession)
		}
		return nil, s.unavailable(err, "verify")
	}
	return &ports.AuthResult{Message: domain.MsgSessionValid, UserID: sess.AppUserID}, nil
}

// Logout ends a session. It reports success whether or not the session
// existed, so callers cannot probe for live tokens.
func (s *AuthService) Logout(ctx context.Context, sessionToken string) *ports.AuthResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := s.sessions.End(ctx, sessionToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("logout: failed to end session")
	}
	if sess != nil {
		s.record(ctx, domain.ActivityLog{
			ApplicationID: sess.ApplicationID,
			AppUserID:     sess.AppUserID,
		}, domain.EventUserLogout, true, "")
	}
	return &ports.AuthResult{Message: domain.MsgLoggedOut}
}

func (s *AuthService) resolveApplication(ctx context.Context, apiKey string) (*domain.Application, error) {
	if apiKey == "" {
		return nil, domain.Fail(domain.ErrInvalidAPIKey, domain.MsgInvalidAPIKey)
	}
	app, err := s.apps.FindByAPIKey(ctx, apiKey)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.Fail(domain.ErrInvalidAPIKey, domain.MsgInvalidAPIKey)
		}
		return nil, s.unavailable(err, "resolve application")
	}
	if !app.Active {
		return nil, domain.Fail(domain.ErrInvalidAPIKey, domain.MsgInvalidAPIKey)
	}
	return app, nil
}

// checkStatus covers the inactive, paused and expired branches in that order.
func (s *AuthService) checkStatus(user *domain.AppUser, msgs domain.Messages, now time.Time) (*domain.AuthError, string) {
	switch {
	case !user.Active:
		return domain.Fail(domain.ErrAccountDisabled, msgs.AccountDisabled), domain.EventAccountDisabled
	case user.Paused:
		return domain.Fail(domain.ErrAccountPaused, msgs.AccountPaused), domain.EventAccountPaused
	case user.Expired(now):
		return domain.Fail(domain.ErrAccountExpired, msgs.AccountExpired), domain.EventAccountExpired
	}
	return nil, ""
}

func guardFailure(reason error, msgs domain.Messages) (*domain.AuthError, string) {
	if errors.Is(reason, domain.ErrVersionMismatch) {
		return domain.Fail(domain.ErrVersionMismatch, msgs.VersionMismatch), domain.EventVersionMismatch
	}
	return domain.Fail(domain.ErrHwidMismatch, msgs.HwidMismatch), domain.EventHwidMismatch
}

func licenseFailure(err error) *domain.AuthError {
	switch {
	case errors.Is(err, domain.ErrInvalidLicense):
		return domain.Fail(domain.ErrInvalidLicense, domain.MsgInvalidLicense)
	case errors.Is(err, domain.ErrLicenseExpired):
		return domain.Fail(domain.ErrLicenseExpired, domain.MsgLicenseExpired)
	case errors.Is(err, domain.ErrLicenseFull):
		return domain.Fail(domain.ErrLicenseFull, domain.MsgLicenseFull)
	}
	return nil
}

func (s *AuthService) releaseSlot(ctx context.Context, licenseID string) {
	if err := s.ledger.Release(context.WithoutCancel(ctx), licenseID); err != nil {
		s.log.Error().Err(err).Str("license_key_id", licenseID).Msg("failed to release license slot")
	}
}

func (s *AuthService) record(ctx context.Context, entry domain.ActivityLog, event string, success bool, errMsg string) {
	entry.Event = event
	entry.Success = success
	entry.ErrorMessage = errMsg
	entry.CreatedAt = s.now().UTC()
	if entry.Metadata != nil {
		md := make(map[string]any, len(entry.Metadata))
		for k, v := range entry.Metadata {
			md[k] = v
		}
		entry.Metadata = md
	}
	s.activity.Record(ctx, entry)
}

func (s *AuthService) unavailable(err error, op string) *domain.AuthError {
	s.log.Error().Err(err).Str("op", op).Msg("store call failed")
	return domain.Fail(domain.ErrServiceUnavailable, domain.MsgServiceUnavailable)
}
