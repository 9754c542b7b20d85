// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"cmp"
	"context"
	"crypto/subtle"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-user-gate/models"
)

// MemoryStorage is a process-local implementation of [UserRepository],
// [RoleRepository], [OTPRepository] and [Transactor].
//
// A single RWMutex guards the maps, so every method is atomic on its own.
// Transactions are serialized by a second mutex and roll back through an
// undo log recorded by each mutating call made with the transaction ctx.
// An undo step only fires while the slot still holds what the transaction
// wrote; a write made outside the transaction in the meantime is kept.
type MemoryStorage struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	nextID int64
	users  map[int64]models.User
	otps   map[int64]models.OneTimeCode
	roles  map[models.Role]struct{}
}

type memTxKey struct{}

type memTx struct {
	undo []func()
}

// NewMemoryStorage returns an empty storage seeded with all known roles.
func NewMemoryStorage() *MemoryStorage {
	s := &MemoryStorage{
		users: make(map[int64]models.User),
		otps:  make(map[int64]models.OneTimeCode),
		roles: make(map[models.Role]struct{}, len(models.AllRoles)),
	}
	for _, r := range models.AllRoles {
		s.roles[r] = struct{}{}
	}
	return s
}

// WithinTx implements [Transactor].
func (s *MemoryStorage) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memTx{}
	defer func() {
		if p := recover(); p != nil {
			s.rollback(tx)
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		s.rollback(tx)
	}
	return err
}

func (s *MemoryStorage) rollback(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// record registers undo with the transaction bound to ctx, if any.
// Must be called with s.mu held.
func record(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		tx.undo = append(tx.undo, undo)
	}
}

// ── RoleRepository ────────────────────────────────────────────────────────────

func (s *MemoryStorage) FindRoleByName(ctx context.Context, role models.Role) (models.Role, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.roles[role]; !ok {
		return "", ErrRoleNotFound
	}
	return role, nil
}

// ── UserRepository ────────────────────────────────────────────────────────────

func (s *MemoryStorage) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUniqueLocked(0, user.Username, user.Email); err != nil {
		return models.User{}, err
	}

	s.nextID++
	user.UserID = s.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user = cloneUser(user)
	user.Roles = models.NormalizeRoles(user.Roles)
	s.users[user.UserID] = user

	id := user.UserID
	record(ctx, func() { delete(s.users, id) })

	return cloneUser(user), nil
}

func (s *MemoryStorage) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return s.findUser(ctx, func(u models.User) bool { return u.UserID == userID })
}

func (s *MemoryStorage) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findUser(ctx, func(u models.User) bool { return u.Username == username })
}

func (s *MemoryStorage) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, func(u models.User) bool { return u.Email == email })
}

func (s *MemoryStorage) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.FindUserByUsername(ctx, username)
	return existsResult(err)
}

func (s *MemoryStorage) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindUserByEmail(ctx, email)
	return existsResult(err)
}

func (s *MemoryStorage) UpdateUser(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.UserID]
	if !ok {
		return ErrUserNotFound
	}
	if err := s.checkUniqueLocked(user.UserID, user.Username, user.Email); err != nil {
		return err
	}

	prevUsername, prevEmail, prevApproved := current.Username, current.Email, current.Approved
	current.Username = user.Username
	current.Email = user.Email
	current.Approved = copyBool(user.Approved)
	s.users[user.UserID] = current

	wrote := current
	record(ctx, func() {
		u, ok := s.users[user.UserID]
		if !ok || u.Username != wrote.Username || u.Email != wrote.Email || !equalBool(u.Approved, wrote.Approved) {
			return
		}
		u.Username, u.Email, u.Approved = prevUsername, prevEmail, prevApproved
		s.users[user.UserID] = u
	})

	return nil
}

func (s *MemoryStorage) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}

	prev := current.PasswordHash
	current.PasswordHash = passwordHash
	s.users[userID] = current

	record(ctx, func() {
		if u, ok := s.users[userID]; ok && u.PasswordHash == passwordHash {
			u.PasswordHash = prev
			s.users[userID] = u
		}
	})

	return nil
}

func (s *MemoryStorage) ReplaceRoles(ctx context.Context, userID int64, roles []models.Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	for _, r := range roles {
		if _, known := s.roles[r]; !known {
			return ErrRoleNotFound
		}
	}

	prev := current.Roles
	current.Roles = models.NormalizeRoles(roles)
	s.users[userID] = current

	wrote := current.Roles
	record(ctx, func() {
		if u, ok := s.users[userID]; ok && slices.Equal(u.Roles, wrote) {
			u.Roles = prev
			s.users[userID] = u
		}
	})

	return nil
}

func (s *MemoryStorage) DeleteUser(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	otp, hadOTP := s.otps[userID]

	delete(s.users, userID)
	delete(s.otps, userID)

	record(ctx, func() {
		if _, ok := s.users[userID]; ok {
			return
		}
		s.users[userID] = user
		if _, ok := s.otps[userID]; hadOTP && !ok {
			s.otps[userID] = otp
		}
	})

	return nil
}

func (s *MemoryStorage) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if filter.PendingOnly && u.IsApproved() {
			continue
		}
		users = append(users, cloneUser(u))
	}
	slices.SortFunc(users, func(a, b models.User) int { return cmp.Compare(a.UserID, b.UserID) })

	return users, nil
}

func (s *MemoryStorage) findUser(ctx context.Context, match func(models.User) bool) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// checkUniqueLocked reports a conflict with any user other than selfID.
func (s *MemoryStorage) checkUniqueLocked(selfID int64, username, email string) error {
	for id, u := range s.users {
		if id == selfID {
			continue
		}
		if u.Username == username {
			return ErrUsernameAlreadyExists
		}
		if u.Email == email {
			return ErrEmailAlreadyExists
		}
	}
	return nil
}

// ── OTPRepository ─────────────────────────────────────────────────────────────

func (s *MemoryStorage) UpsertOTP(ctx context.Context, otp models.OneTimeCode) (models.OneTimeCode, error) {
	if err := ctx.Err(); err != nil {
		return models.OneTimeCode{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[otp.UserID]; !ok {
		return models.OneTimeCode{}, ErrUserNotFound
	}

	prev, existed := s.otps[otp.UserID]
	otp.Verified = false
	otp.Generation = newOTPGeneration()
	for otp.Generation == prev.Generation {
		otp.Generation = newOTPGeneration()
	}
	otp.CreatedAt = otp.CreatedAt.UTC()
	otp.ExpiresAt = otp.ExpiresAt.UTC()
	s.otps[otp.UserID] = otp

	record(ctx, s.restoreOTP(otp.UserID, prev, existed, &otp))

	return otp, nil
}

func (s *MemoryStorage) MarkOTPVerified(ctx context.Context, userID int64, code string, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	otp, ok := s.otps[userID]
	if !ok || otp.Verified || now.After(otp.ExpiresAt) {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		return false, nil
	}

	prev := otp
	otp.Verified = true
	s.otps[userID] = otp

	record(ctx, s.restoreOTP(userID, prev, true, &otp))

	return true, nil
}

func (s *MemoryStorage) FindOTPByUserID(ctx context.Context, userID int64) (models.OneTimeCode, error) {
	if err := ctx.Err(); err != nil {
		return models.OneTimeCode{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	otp, ok := s.otps[userID]
	if !ok {
		return models.OneTimeCode{}, ErrOTPNotFound
	}
	return otp, nil
}

func (s *MemoryStorage) DeleteOTP(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.otps[userID]
	if !existed {
		return nil
	}
	delete(s.otps, userID)
	record(ctx, s.restoreOTP(userID, prev, true, nil))

	return nil
}

func (s *MemoryStorage) DeleteOTPGeneration(ctx context.Context, userID int64, generation int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.otps[userID]
	if !existed || prev.Generation != generation {
		return ErrOTPSuperseded
	}
	delete(s.otps, userID)
	record(ctx, s.restoreOTP(userID, prev, true, nil))

	return nil
}

func (s *MemoryStorage) DeleteExpiredOTPs(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for userID, otp := range s.otps {
		if otp.ExpiresAt.Before(before) {
			delete(s.otps, userID)
			record(ctx, s.restoreOTP(userID, otp, true, nil))
			removed++
		}
	}

	return removed, nil
}

// restoreOTP returns an undo step that puts prev back (or removes the slot
// when nothing existed before). wrote is the code the transaction left in
// the slot, nil when it deleted it; the step is skipped once the slot no
// longer matches.
func (s *MemoryStorage) restoreOTP(userID int64, prev models.OneTimeCode, existed bool, wrote *models.OneTimeCode) func() {
	left := models.OneTimeCode{}
	if wrote != nil {
		left = *wrote
	}
	return func() {
		current, ok := s.otps[userID]
		if ok != (wrote != nil) || current != left {
			return
		}
		if existed {
			s.otps[userID] = prev
			return
		}
		delete(s.otps, userID)
	}
}

func existsResult(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

func cloneUser(u models.User) models.User {
	u.Roles = slices.Clone(u.Roles)
	u.Approved = copyBool(u.Approved)
	return u
}

func equalBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return models.BoolPtr(*b)
}
