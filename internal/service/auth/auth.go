// Package authservice handles signup and login. It exists so every core
// operation has a real pre-validated current user; token mechanics stay
// outside the membership and board invariants.
package authservice

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/askar/teamboard/internal/models"
	"github.com/askar/teamboard/internal/store"
)

var (
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type Service struct {
	users  store.UserStore
	secret []byte
}

func New(users store.UserStore, jwtSecret string) *Service {
	return &Service{
		users:  users,
		secret: []byte(jwtSecret),
	}
}

// Signup registers a new user with a bcrypt-hashed password.
func (s *Service) Signup(ctx context.Context, u *models.User) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)

	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return ErrUserExists
		}
		return err
	}
	u.Password = ""
	return nil
}

// Login authenticates by username and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	user.Password = ""
	return token, user, nil
}

func (s *Service) generateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.UserID,
		"username": user.Username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(s.secret)
}
