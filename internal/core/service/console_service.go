package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

const (
	maxLicenseBatch     = 500
	defaultActivityPage = 50
	maxActivityPage     = 500
)

// permission levels for console actions on an application.
type permission int

const (
	permManage   permission = iota // owner of the app or platform staff
	permModerate                   // additionally moderators
)

// ConsoleDeps groups the collaborators of ConsoleService.
type ConsoleDeps struct {
	Apps      ports.ApplicationRepository
	Users     ports.AppUserRepository
	Licenses  ports.LicenseRepository
	Blacklist ports.BlacklistRepository
	Activity  ports.ActivityRepository
	Recorder  ports.ActivityRecorder
	Ledger    *LicenseLedger
	Sessions  *SessionTracker
}

type consoleService struct {
	apps      ports.ApplicationRepository
	users     ports.AppUserRepository
	licenses  ports.LicenseRepository
	blacklist ports.BlacklistRepository
	activity  ports.ActivityRepository
	recorder  ports.ActivityRecorder
	ledger    *LicenseLedger
	sessions  *SessionTracker
	now       func() time.Time
	log       zerolog.Logger
}

// NewConsoleService returns the owner-console service.
func NewConsoleService(deps ConsoleDeps, log zerolog.Logger) ports.ConsoleService {
	return &consoleService{
		apps:      deps.Apps,
		users:     deps.Users,
		licenses:  deps.Licenses,
		blacklist: deps.Blacklist,
		activity:  deps.Activity,
		recorder:  deps.Recorder,
		ledger:    deps.Ledger,
		sessions:  deps.Sessions,
		now:       time.Now,
		log:       log,
	}
}

func (s *consoleService) CreateApplication(ctx context.Context, actor *domain.Account, in ports.CreateApplicationInput) (*domain.Application, error) {
	if !actor.Active || actor.Role == domain.RoleModerator {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	key, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	app := &domain.Application{
		ID:        uuid.NewString(),
		OwnerID:   actor.ID,
		Name:      strings.TrimSpace(in.Name),
		APIKey:    key,
		Version:   in.Version,
		Active:    true,
		HwidLock:  in.HwidLock,
		Messages:  in.Messages.WithDefaults(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.log.Info().Str("application_id", app.ID).Str("owner_id", actor.ID).Msg("application created")
	return app, nil
}

func (s *consoleService) ListApplications(ctx context.Context, actor *domain.Account) ([]*domain.Application, error) {
	if !actor.Active {
		return nil, domain.ErrForbidden
	}
	return s.apps.ListByOwner(ctx, actor.ID)
}

func (s *consoleService) UpdateApplication(ctx context.Context, actor *domain.Account, appID string, in ports.UpdateApplicationInput) (*domain.Application, error) {
	app, err := s.authorize(ctx, actor, appID, permManage)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
		}
		app.Name = strings.TrimSpace(*in.Name)
	}
	if in.Version != nil {
		app.Version = *in.Version
	}
	if in.Active != nil {
		app.Active = *in.Active
	}
	if in.HwidLock != nil {
		app.HwidLock = *in.HwidLock
	}
	if in.Messages != nil {
		app.Messages = in.Messages.WithDefaults()
	}
	app.UpdatedAt = s.now().UTC()

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	return app, nil
}

func (s *consoleService) RotateAPIKey(ctx context.Context, actor *domain.Account, appID string) (*domain.Application, error) {
	app, err := s.authorize(ctx, actor, appID, permManage)
	if err != nil {
		return nil, err
	}
	key, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	if err := s.apps.RotateAPIKey(ctx, app.ID, key); err != nil {
		return nil, fmt.Errorf("rotate api key: %w", err)
	}
	app.APIKey = key
	app.UpdatedAt = s.now().UTC()

	s.recorder.Record(ctx, domain.ActivityLog{
		ApplicationID: app.ID,
		Event:         domain.EventAPIKeyRotated,
		Success:       true,
		Metadata:      map[string]any{"account_id": actor.ID},
	})
	return app, nil
}

func (s *consoleService) CreateLicenseKeys(ctx context.Context, actor *domain.Account, appID string, in ports.CreateLicensesInput) ([]*domain.LicenseKey, error) {
	app, err := s.authorize(ctx, actor, appID, permManage)
	if err != nil {
		return nil, err
	}
	if in.Count <= 0 || in.Count > maxLicenseBatch || in.MaxUsers <= 0 || in.ValidityDays <= 0 {
		return nil, fmt.Errorf("%w: count, max_users and validity_days must be positive", domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	expires := now.AddDate(0, 0, in.ValidityDays)
	keys := make([]*domain.LicenseKey, 0, in.Count)
	for i := 0; i < in.Count; i++ {
		k, err := GenerateLicenseKey()
		if err != nil {
			return nil, err
		}
		keys = append(keys, &domain.LicenseKey{
			ID:            uuid.NewString(),
			ApplicationID: app.ID,
			Key:           k,
			MaxUsers:      in.MaxUsers,
			ValidityDays:  in.ValidityDays,
			ExpiresAt:     expires,
			Active:        true,
			CreatedAt:     now,
		})
	}
	if err := s.licenses.CreateMany(ctx, keys); err != nil {
		return nil, fmt.Errorf("create license keys: %w", err)
	}
	return keys, nil
}

func (s *consoleService) PauseUser(ctx context.Context, actor *domain.Account, appID, userID string) error {
	return s.setPaused(ctx, actor, appID, userID, true)
}

func (s *consoleService) UnpauseUser(ctx context.Context, actor *domain.Account, appID, userID string) error {
	return s.setPaused(ctx, actor, appID, userID, false)
}

func (s *consoleService) setPaused(ctx context.Context, actor *domain.Account, appID, userID string, paused bool) error {
	user, err := s.authorizeUser(ctx, actor, appID, userID, permModerate)
	if err != nil {
		return err
	}
	if err := s.users.SetPaused(ctx, user.ID, paused); err != nil {
		return fmt.Errorf("set paused: %w", err)
	}
	if paused {
		if err := s.sessions.EndAllForUser(ctx, user.ID); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to end sessions of paused user")
		}
	}

	event := domain.EventUserUnpaused
	if paused {
		event = domain.EventUserPaused
	}
	s.recordAdmin(ctx, actor, user, event)
	return nil
}

func (s *consoleService) ResetHwid(ctx context.Context, actor *domain.Account, appID, userID string) error {
	user, err := s.authorizeUser(ctx, actor, appID, userID, permModerate)
	if err != nil {
		return err
	}
	if err := s.users.ResetHwid(ctx, user.ID); err != nil {
		return fmt.Errorf("reset hwid: %w", err)
	}
	s.recordAdmin(ctx, actor, user, domain.EventHwidReset)
	return nil
}

// DeleteUser removes an app user, ends its sessions and returns its license slot.
// Activity records referencing the user are kept.
func (s *consoleService) DeleteUser(ctx context.Context, actor *domain.Account, appID, userID string) error {
	user, err := s.authorizeUser(ctx, actor, appID, userID, permManage)
	if err != nil {
		return err
	}
	if err := s.sessions.EndAllForUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.ledger.Release(ctx, user.LicenseKeyID); err != nil {
		s.log.Error().Err(err).Str("license_key_id", user.LicenseKeyID).Msg("failed to release license slot")
	}
	s.recordAdmin(ctx, actor, user, domain.EventUserDeleted)
	return nil
}

func (s *consoleService) AddBlacklist(ctx context.Context, actor *domain.Account, in ports.BlacklistInput) (*domain.BlacklistEntry, error) {
	if err := s.authorizeScope(ctx, actor, in.ApplicationID); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown blacklist type %q", domain.ErrInvalidInput, in.Type)
	}
	value := NormalizeIdentity(in.Type, in.Value)
	if value == "" {
		return nil, fmt.Errorf("%w: value is required", domain.ErrInvalidInput)
	}

	entry := &domain.BlacklistEntry{
		ID:            uuid.NewString(),
		ApplicationID: in.ApplicationID,
		Type:          in.Type,
		Value:         value,
		Reason:        in.Reason,
		Active:        true,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.blacklist.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *consoleService) RemoveBlacklist(ctx context.Context, actor *domain.Account, appID, entryID string) error {
	if err := s.authorizeScope(ctx, actor, appID); err != nil {
		return err
	}
	return s.blacklist.Deactivate(ctx, appID, entryID)
}

func (s *consoleService) ListBlacklist(ctx context.Context, actor *domain.Account, appID string) ([]*domain.BlacklistEntry, error) {
	if err := s.authorizeScope(ctx, actor, appID); err != nil {
		return nil, err
	}
	return s.blacklist.List(ctx, appID)
}

func (s *consoleService) ListActivity(ctx context.Context, actor *domain.Account, appID string, limit int) ([]*domain.ActivityLog, error) {
	if _, err := s.authorize(ctx, actor, appID, permModerate); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultActivityPage
	}
	if limit > maxActivityPage {
		limit = maxActivityPage
	}
	return s.activity.ListByApplication(ctx, appID, limit)
}

// authorize loads the application and checks that actor may act on it.
// Missing applications and foreign applications both surface as not found.
func (s *consoleService) authorize(ctx context.Context, actor *domain.Account, appID string, perm permission) (*domain.Application, error) {
	if actor == nil || !actor.Active {
		return nil, domain.ErrForbidden
	}
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsPlatformStaff():
		return app, nil
	case actor.Role == domain.RoleModerator:
		if perm == permModerate {
			return app, nil
		}
		return nil, domain.ErrForbidden
	case app.OwnerID == actor.ID:
		return app, nil
	}
	return nil, domain.ErrNotFound
}

func (s *consoleService) authorizeUser(ctx context.Context, actor *domain.Account, appID, userID string, perm permission) (*domain.AppUser, error) {
	if _, err := s.authorize(ctx, actor, appID, perm); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, appID, userID)
}

// authorizeScope allows global rules only for platform staff.
func (s *consoleService) authorizeScope(ctx context.Context, actor *domain.Account, appID string) error {
	if appID == "" {
		if actor == nil || !actor.Active || !actor.IsPlatformStaff() {
			return domain.ErrForbidden
		}
		return nil
	}
	_, err := s.authorize(ctx, actor, appID, permManage)
	return err
}

func (s *consoleService) recordAdmin(ctx context.Context, actor *domain.Account, user *domain.AppUser, event string) {
	s.recorder.Record(ctx, domain.ActivityLog{
		ApplicationID: user.ApplicationID,
		AppUserID:     user.ID,
		Event:         event,
		Success:       true,
		Metadata:      map[string]any{"account_id": actor.ID},
		CreatedAt:     s.now().UTC(),
	})
}
