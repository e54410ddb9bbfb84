package service

import (
	"context"
	"sync"
	"time"

	"github.com/vaultline/authd/internal/core/domain"
)

type memApps struct {
	mu   sync.Mutex
	apps map[string]*domain.Application
	err  error
}

func newMemApps(apps ...*domain.Application) *memApps {
	r := &memApps{apps: make(map[string]*domain.Application)}
	for _, a := range apps {
		r.apps[a.ID] = a
	}
	return r
}

func cloneApp(a *domain.Application) *domain.Application {
	c := *a
	return &c
}

func (r *memApps) FindByAPIKey(_ context.Context, key string) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.apps {
		if a.APIKey == key {
			return cloneApp(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memApps) FindByID(_ context.Context, id string) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneApp(a), nil
}

func (r *memApps) ListByOwner(_ context.Context, ownerID string) ([]*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Application
	for _, a := range r.apps {
		if a.OwnerID == ownerID {
			out = append(out, cloneApp(a))
		}
	}
	return out, nil
}

func (r *memApps) Create(_ context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[app.ID] = cloneApp(app)
	return nil
}

func (r *memApps) Update(_ context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[app.ID]; !ok {
		return domain.ErrNotFound
	}
	r.apps[app.ID] = cloneApp(app)
	return nil
}

func (r *memApps) RotateAPIKey(_ context.Context, id, newKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.APIKey = newKey
	return nil
}

type memUsers struct {
	mu       sync.Mutex
	users    map[string]*domain.AppUser
	createFn func(*domain.AppUser) error
	attempts int
	logins   int
	// stall makes FindByUsername wait for the caller's deadline.
	stall bool
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*domain.AppUser)}
}

func cloneAppUser(u *domain.AppUser) *domain.AppUser {
	c := *u
	return &c
}

func (r *memUsers) put(u *domain.AppUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneAppUser(u)
}

func (r *memUsers) get(id string) *domain.AppUser {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	return cloneAppUser(u)
}

func (r *memUsers) FindByUsername(ctx context.Context, appID, username string) (*domain.AppUser, error) {
	if r.stall {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ApplicationID == appID && u.Username == username {
			return cloneAppUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUsers) FindByID(_ context.Context, appID, id string) (*domain.AppUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.ApplicationID != appID {
		return nil, domain.ErrNotFound
	}
	return cloneAppUser(u), nil
}

func (r *memUsers) Exists(_ context.Context, appID, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ApplicationID != appID {
			continue
		}
		if u.Username == username || (email != "" && u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) Create(_ context.Context, user *domain.AppUser) error {
	if r.createFn != nil {
		if err := r.createFn(user); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ApplicationID == user.ApplicationID && u.Username == user.Username {
			return domain.ErrConflict
		}
	}
	r.users[user.ID] = cloneAppUser(user)
	return nil
}

func (r *memUsers) RecordFailedAttempt(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if u, ok := r.users[id]; ok {
		u.LoginAttempts++
		u.LastAttemptAt = &at
	}
	return nil
}

func (r *memUsers) RecordLogin(_ context.Context, id, ip string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins++
	if u, ok := r.users[id]; ok {
		u.LastLoginIP = ip
		u.LastLoginAt = &at
		u.LoginAttempts = 0
	}
	return nil
}

func (r *memUsers) BindHwid(_ context.Context, id, hwid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	if u.Hwid != "" {
		return domain.ErrConflict
	}
	u.Hwid = hwid
	return nil
}

func (r *memUsers) ResetHwid(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Hwid = ""
	return nil
}

func (r *memUsers) SetPaused(_ context.Context, id string, paused bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Paused = paused
	return nil
}

func (r *memUsers) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// memLicenses mirrors the store's conditional update: the bound check and
// the increment happen under one lock.
type memLicenses struct {
	mu   sync.Mutex
	keys map[string]*domain.LicenseKey
	err  error
}

func newMemLicenses(keys ...*domain.LicenseKey) *memLicenses {
	r := &memLicenses{keys: make(map[string]*domain.LicenseKey)}
	for _, k := range keys {
		r.keys[k.ID] = k
	}
	return r
}

func (r *memLicenses) current(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[id].CurrentUsers
}

func (r *memLicenses) FindByKey(_ context.Context, key string) (*domain.LicenseKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, k := range r.keys {
		if k.Key == key {
			c := *k
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memLicenses) CreateMany(_ context.Context, keys []*domain.LicenseKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		c := *k
		r.keys[k.ID] = &c
	}
	return nil
}

func (r *memLicenses) Consume(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[id]
	if !ok || !k.Active || k.CurrentUsers >= k.MaxUsers {
		return domain.ErrLicenseFull
	}
	k.CurrentUsers++
	return nil
}

func (r *memLicenses) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k, ok := r.keys[id]; ok && k.CurrentUsers > 0 {
		k.CurrentUsers--
	}
	return nil
}

type memBlacklist struct {
	mu      sync.Mutex
	entries []*domain.BlacklistEntry
	err     error
}

func (r *memBlacklist) ActiveMatch(_ context.Context, appID string, t domain.BlacklistType, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	for _, e := range r.entries {
		if e.Active && e.Type == t && e.Value == value && (e.ApplicationID == appID || e.ApplicationID == "") {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBlacklist) Create(_ context.Context, entry *domain.BlacklistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Active && e.ApplicationID == entry.ApplicationID && e.Type == entry.Type && e.Value == entry.Value {
			return domain.ErrConflict
		}
	}
	c := *entry
	r.entries = append(r.entries, &c)
	return nil
}

func (r *memBlacklist) Deactivate(_ context.Context, appID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id && e.ApplicationID == appID {
			e.Active = false
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memBlacklist) List(_ context.Context, appID string) ([]*domain.BlacklistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.BlacklistEntry
	for _, e := range r.entries {
		if e.ApplicationID == appID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*domain.ActiveSession
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]*domain.ActiveSession)}
}

func (r *memSessions) Create(_ context.Context, s *domain.ActiveSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.TokenHash]; ok {
		return domain.ErrConflict
	}
	c := *s
	r.sessions[s.TokenHash] = &c
	return nil
}

func (r *memSessions) FindByTokenHash(_ context.Context, hash string) (*domain.ActiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (r *memSessions) Touch(_ context.Context, hash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[hash]; ok {
		s.LastActivity = at
	}
	return nil
}

func (r *memSessions) Deactivate(_ context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[hash]; ok {
		s.Active = false
	}
	return nil
}

func (r *memSessions) DeactivateByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.AppUserID == userID {
			s.Active = false
		}
	}
	return nil
}

func (r *memSessions) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if s.Active && s.ExpiresAt != nil && s.ExpiresAt.Before(now) {
			s.Active = false
			n++
		}
	}
	return n, nil
}

func (r *memSessions) activeFor(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.AppUserID == userID && s.Active {
			n++
		}
	}
	return n
}

func (r *memSessions) all() []*domain.ActiveSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.ActiveSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		c := *s
		out = append(out, &c)
	}
	return out
}

// memActivity implements both the repository and the recorder.
type memActivity struct {
	mu      sync.Mutex
	entries []domain.ActivityLog
	err     error
}

func (r *memActivity) Record(_ context.Context, entry domain.ActivityLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *memActivity) Insert(_ context.Context, entry *domain.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memActivity) ListByApplication(_ context.Context, appID string, limit int) ([]*domain.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ActivityLog
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].ApplicationID == appID {
			e := r.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *memActivity) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Event
	}
	return out
}

func (r *memActivity) last() domain.ActivityLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}
