package app

import (
	"context"
	"errors"
	"time"

	"realtime-quiz-service/internal/auth"
	"realtime-quiz-service/internal/domain"
)

// UserService handles registration and credential checks on top of the
// user store.
type UserService struct {
	users UserStore
	now   func() time.Time
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users, now: time.Now}
}

// Register creates a new user with a bcrypt-hashed password. Fails with
// ErrUserExists if the username is taken.
func (s *UserService) Register(ctx context.Context, username, password string) (domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.User{}, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	return s.users.Create(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
}

// Authenticate resolves credentials to a user. Fails with ErrUserNotFound
// for unknown usernames and ErrInvalidCredentials on a password mismatch.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return s.users.GetByID(ctx, id)
}
