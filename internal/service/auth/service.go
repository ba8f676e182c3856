package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/watchparty/server/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnknownProvider    = errors.New("unknown oauth provider")
	ErrNoProviderEmail    = errors.New("oauth provider returned no email")
)

type iUserRepo interface {
	CreateUser(context.Context, *repository.CreateUserParams) error
	GetUserById(context.Context, string) (repository.User, error)
	GetUserByEmail(context.Context, string) (repository.User, error)
	GetUserByIdentity(ctx context.Context, provider, subject string) (repository.User, error)
	UpdateUserPassword(ctx context.Context, userId, passwordHash string) error
	AddIdentity(context.Context, *repository.AddIdentityParams) error
}

type Config struct {
	Secret   string
	TokenTTL time.Duration
}

type service struct {
	userRepo  iUserRepo
	logger    *slog.Logger
	secret    []byte
	tokenTTL  time.Duration
	providers map[string]provider
}

func NewService(userRepo iUserRepo, cfg *Config, logger *slog.Logger) *service {
	return &service{
		userRepo:  userRepo,
		logger:    logger,
		secret:    []byte(cfg.Secret),
		tokenTTL:  cfg.TokenTTL,
		providers: make(map[string]provider),
	}
}

type SignUpParams struct {
	Email    string
	Name     string
	Password string
}

type AuthResponse struct {
	User  User
	Token string
}

func (s service) SignUp(ctx context.Context, params *SignUpParams) (AuthResponse, error) {
	email := strings.TrimSpace(strings.ToLower(params.Email))

	if _, err := s.userRepo.GetUserByEmail(ctx, email); err == nil {
		return AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResponse{}, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	userId := uuid.NewString()
	if err := s.userRepo.CreateUser(ctx, &repository.CreateUserParams{
		UserId:       userId,
		Email:        email,
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: string(hash),
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to create user", "error", err)
		return AuthResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.generateJWT(userId)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("failed to generate token: %w", err)
	}

	return AuthResponse{
		User: User{
			Id:    userId,
			Email: email,
			Name:  strings.TrimSpace(params.Name),
		},
		Token: token,
	}, nil
}

type LogInParams struct {
	Email    string
	Password string
}

func (s service) LogIn(ctx context.Context, params *LogInParams) (AuthResponse, error) {
	email := strings.TrimSpace(strings.ToLower(params.Email))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResponse{}, ErrInvalidCredentials
		}
		return AuthResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	if user.PasswordHash == "" {
		// oauth-only account
		return AuthResponse{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)) != nil {
		return AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.generateJWT(user.Id)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("failed to generate token: %w", err)
	}

	return AuthResponse{
		User:  s.toUser(user),
		Token: token,
	}, nil
}

type ChangePasswordParams struct {
	UserId          string
	CurrentPassword string
	NewPassword     string
}

func (s service) ChangePassword(ctx context.Context, params *ChangePasswordParams) error {
	user, err := s.userRepo.GetUserById(ctx, params.UserId)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.CurrentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdateUserPassword(ctx, params.UserId, string(hash)); err != nil {
		s.logger.InfoContext(ctx, "failed to update password", "error", err)
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s service) GetProfile(ctx context.Context, userId string) (User, error) {
	user, err := s.userRepo.GetUserById(ctx, userId)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return s.toUser(user), nil
}

func (s service) toUser(user repository.User) User {
	providers := make([]string, 0, len(user.Identities))
	for _, identity := range user.Identities {
		providers = append(providers, identity.Provider)
	}

	return User{
		Id:        user.Id,
		Email:     user.Email,
		Name:      user.Name,
		Providers: providers,
	}
}
