package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"nexuios/internal/db"
	"nexuios/internal/errs"
	"nexuios/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService is thin auth glue around the users table: bcrypt passwords and
// short-lived HS256 tokens.
type UserService struct {
	users     *repository.UserRepository
	jwtSecret []byte
	log       zerolog.Logger
}

func NewUserService(users *repository.UserRepository, jwtSecret []byte, log zerolog.Logger) *UserService {
	return &UserService{users: users, jwtSecret: jwtSecret, log: log}
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*db.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.New(errs.KindValidation, "The email has already been taken.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &db.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Int("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *UserService) GetUser(ctx context.Context, id int) (*db.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NotFound("User not found")
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]db.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	deleted, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errs.NotFound("User not found")
	}
	return nil
}
