package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/watchparty/server/internal/repository"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

type provider struct {
	config      *oauth2.Config
	userInfoURL string
}

type ProviderConfig struct {
	ClientId     string
	ClientSecret string
	RedirectURL  string
}

func (s *service) RegisterGoogle(cfg *ProviderConfig) {
	s.providers[ProviderGoogle] = provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientId,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
	}
}

func (s *service) RegisterGitHub(cfg *ProviderConfig) {
	s.providers[ProviderGitHub] = provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientId,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		userInfoURL: "https://api.github.com/user",
	}
}

func (s service) AuthCodeURL(providerName, state string) (string, error) {
	p, ok := s.providers[providerName]
	if !ok {
		return "", ErrUnknownProvider
	}

	return p.config.AuthCodeURL(state), nil
}

type ExchangeCodeParams struct {
	Provider string
	Code     string
}

// ExchangeCode finishes the oauth flow: trades the code for a provider
// token, fetches the provider profile and links it to an existing account
// by subject or email, creating the account on first login. The issued
// bearer token is the same JWT the password flow uses.
func (s service) ExchangeCode(ctx context.Context, params *ExchangeCodeParams) (AuthResponse, error) {
	p, ok := s.providers[params.Provider]
	if !ok {
		return AuthResponse{}, ErrUnknownProvider
	}

	oauthToken, err := p.config.Exchange(ctx, params.Code)
	if err != nil {
		s.logger.InfoContext(ctx, "failed to exchange oauth code", "provider", params.Provider, "error", err)
		return AuthResponse{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	info, err := s.fetchUserInfo(ctx, params.Provider, p, oauthToken)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("failed to fetch user info: %w", err)
	}

	user, err := s.linkOrCreateUser(ctx, params.Provider, info)
	if err != nil {
		return AuthResponse{}, err
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

type providerUserInfo struct {
	Subject string
	Email   string
	Name    string
}

func (s service) fetchUserInfo(ctx context.Context, providerName string, p provider, token *oauth2.Token) (providerUserInfo, error) {
	client := p.config.Client(ctx, token)

	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return providerUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return providerUserInfo{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	switch providerName {
	case ProviderGoogle:
		var payload struct {
			Sub   string `json:"sub"`
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return providerUserInfo{}, err
		}
		return providerUserInfo{Subject: payload.Sub, Email: payload.Email, Name: payload.Name}, nil
	case ProviderGitHub:
		var payload struct {
			Id    int64  `json:"id"`
			Login string `json:"login"`
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return providerUserInfo{}, err
		}
		name := payload.Name
		if name == "" {
			name = payload.Login
		}
		return providerUserInfo{Subject: strconv.FormatInt(payload.Id, 10), Email: payload.Email, Name: name}, nil
	default:
		return providerUserInfo{}, ErrUnknownProvider
	}
}

func (s service) linkOrCreateUser(ctx context.Context, providerName string, info providerUserInfo) (repository.User, error) {
	user, err := s.userRepo.GetUserByIdentity(ctx, providerName, info.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrIdentityNotFound) {
		return repository.User{}, fmt.Errorf("failed to get user by identity: %w", err)
	}

	if info.Email == "" {
		return repository.User{}, ErrNoProviderEmail
	}
	email := strings.ToLower(info.Email)

	// email is unique across providers: an existing account gets the new
	// identity linked instead of a duplicate user
	user, err = s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return repository.User{}, fmt.Errorf("failed to get user by email: %w", err)
		}

		userId := uuid.NewString()
		if err := s.userRepo.CreateUser(ctx, &repository.CreateUserParams{
			UserId: userId,
			Email:  email,
			Name:   info.Name,
		}); err != nil {
			s.logger.InfoContext(ctx, "failed to create oauth user", "error", err)
			return repository.User{}, fmt.Errorf("failed to create user: %w", err)
		}

		user = repository.User{Id: userId, Email: email, Name: info.Name}
	}

	if err := s.userRepo.AddIdentity(ctx, &repository.AddIdentityParams{
		UserId:   user.Id,
		Provider: providerName,
		Subject:  info.Subject,
		Email:    email,
	}); err != nil {
		s.logger.InfoContext(ctx, "failed to link identity", "error", err)
		return repository.User{}, fmt.Errorf("failed to link identity: %w", err)
	}

	user.Identities = append(user.Identities, repository.Identity{
		Provider: providerName,
		Subject:  info.Subject,
		Email:    email,
	})

	return user, nil
}
