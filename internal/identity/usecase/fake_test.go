package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/numsphere/internal/identity/entity"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
)

type fakeDB struct {
	mu        sync.Mutex
	users     map[int64]*entity.User
	passwords map[int64]string
	failGet   error
}

func newFakeDB() *fakeDB {
	return &fakeDB{users: map[int64]*entity.User{}, passwords: map[int64]string{}}
}

func (f *fakeDB) byEmail(email string) *entity.User {
	for _, u := range f.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (f *fakeDB) GetUserLoginInfo(_ context.Context, email string) (*entity.UserLoginInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failGet != nil {
		return nil, f.failGet
	}
	u := f.byEmail(email)
	if u == nil {
		return nil, goerror.ErrNotFound
	}
	return &entity.UserLoginInfo{ID: u.ID, Email: u.Email, Status: u.Status, Password: f.passwords[u.ID]}, nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failGet != nil {
		return nil, f.failGet
	}
	u := f.byEmail(email)
	if u == nil {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) NewRegistration(_ context.Context, user entity.NewUser, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.byEmail(user.Email) != nil {
		return goerror.ErrConflict
	}
	f.users[user.ID] = &entity.User{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Status:   user.Status,
		Credits:  user.Credits,
	}
	f.passwords[user.ID] = hash
	return nil
}

func (f *fakeDB) ActivateUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok || u.Status != entity.UserStatusUnverified {
		return goerror.ErrNotFound
	}
	u.Status = entity.UserStatusActive
	return nil
}

func (f *fakeDB) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u, ok := f.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (f *fakeDB) UpdateUserCredential(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return goerror.ErrNotFound
	}
	f.passwords[id] = hash
	return nil
}

type fakeCache struct {
	mu         sync.Mutex
	otps       map[string]entity.OtpChallenge
	attempts   map[string]int64
	cooldowns  map[string]bool
	resetsSent map[string]bool
	resets     map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		otps:       map[string]entity.OtpChallenge{},
		attempts:   map[string]int64{},
		cooldowns:  map[string]bool{},
		resetsSent: map[string]bool{},
		resets:     map[string]int64{},
	}
}

func (f *fakeCache) SaveOtp(_ context.Context, email string, chal entity.OtpChallenge, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.otps[email] = chal
	delete(f.attempts, email)
	return nil
}

func (f *fakeCache) GetOtp(_ context.Context, email string) (*entity.OtpChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	chal, ok := f.otps[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &chal, nil
}

func (f *fakeCache) IncrOtpAttempt(_ context.Context, email string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts[email]++
	return f.attempts[email], nil
}

func (f *fakeCache) DeleteOtp(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.otps, email)
	delete(f.attempts, email)
	return nil
}

func (f *fakeCache) AcquireOtpCooldown(_ context.Context, email string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cooldowns[email] {
		return false, nil
	}
	f.cooldowns[email] = true
	return true, nil
}

func (f *fakeCache) AcquireResetCooldown(_ context.Context, email string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resetsSent[email] {
		return false, nil
	}
	f.resetsSent[email] = true
	return true, nil
}

// expireCooldown ends the running cooldown of email.
func (f *fakeCache) expireCooldown(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.cooldowns, email)
}

func (f *fakeCache) SaveResetToken(_ context.Context, tokenHash string, userID int64, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resets[tokenHash] = userID
	return nil
}

func (f *fakeCache) TakeResetToken(_ context.Context, tokenHash string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.resets[tokenHash]
	if !ok {
		return 0, goerror.ErrNotFound
	}
	delete(f.resets, tokenHash)
	return id, nil
}

type fakeMessaging struct {
	mu        sync.Mutex
	otps      []UserOtpDispatchEvent
	resets    []UserForgotPasswordEvent
	failOtp   error
	failReset error
}

func (f *fakeMessaging) PublishUserOtpDispatch(_ context.Context, msg UserOtpDispatchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOtp != nil {
		return f.failOtp
	}
	f.otps = append(f.otps, msg)
	return nil
}

func (f *fakeMessaging) PublishUserForgotPassword(_ context.Context, msg UserForgotPasswordEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failReset != nil {
		return f.failReset
	}
	f.resets = append(f.resets, msg)
	return nil
}

func (f *fakeMessaging) lastOtp() UserOtpDispatchEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.otps[len(f.otps)-1]
}

type seqID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	return s.next
}

type fixedString string

func (f fixedString) Generate() string { return string(f) }

type fixedOTP string

func (f fixedOTP) GenerateCode() (string, error) { return string(f), nil }
