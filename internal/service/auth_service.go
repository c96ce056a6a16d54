package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"gopkg.in/guregu/null.v4"

	"github.com/CodingAziz/Vehicle-Parking-System/internal/config"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/domain"
	"github.com/CodingAziz/Vehicle-Parking-System/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrUnknownProvider    = errors.New("unknown oauth provider")
	ErrInvalidOAuthState  = errors.New("invalid or expired oauth state")
)

const oauthStateTTL = 10 * time.Minute

type oauthState struct {
	provider  string
	expiresAt time.Time
}

type AuthService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration

	providers map[string]*oauth2.Config

	mu     sync.Mutex
	states map[string]oauthState
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	base := strings.TrimRight(cfg.OAuthRedirectBaseURL, "/")
	providers := map[string]*oauth2.Config{
		domain.ProviderGoogle: {
			ClientID:     cfg.GoogleOAuth.ClientID,
			ClientSecret: cfg.GoogleOAuth.ClientSecret,
			RedirectURL:  base + "/auth/oauth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		domain.ProviderGithub: {
			ClientID:     cfg.GithubOAuth.ClientID,
			ClientSecret: cfg.GithubOAuth.ClientSecret,
			RedirectURL:  base + "/auth/oauth/github/callback",
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
	}
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     cfg.JWTSecret,
		jwtExpiration: cfg.JWTExpiration,
		providers:     providers,
		states:        make(map[string]oauthState),
	}
}

func (s *AuthService) Register(ctx context.Context, dto domain.RegisterUserDTO) (*domain.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, dto.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Username:     dto.Username,
		PasswordHash: null.StringFrom(string(hashed)),
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		Provider:     domain.ProviderLocal,
	}
	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	created.PasswordHash = null.String{}
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, dto domain.LoginUserDTO) (*domain.AuthResponseDTO, error) {
	user, err := s.userRepo.FindByUsername(ctx, dto.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}

	// OAuth-created users have no password to check against.
	if !user.PasswordHash.Valid {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// LoginExternal maps an external identity to an internal user, creating one
// on first login (insert-if-absent keyed by email).
func (s *AuthService) LoginExternal(ctx context.Context, identity domain.ExternalIdentity) (*domain.AuthResponseDTO, error) {
	if identity.Email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", ErrValidation)
	}

	user, err := s.userRepo.FindByEmail(ctx, identity.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("finding user by email: %w", err)
		}
		username := identity.Username
		if username == "" {
			username = identity.Email
		}
		user, err = s.userRepo.Create(ctx, &domain.User{
			Username:  username,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
			Email:     identity.Email,
			Provider:  identity.Provider,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateEntry) {
				// Username collision with an existing local account; the
				// email itself is unique, so fall back to it.
				user, err = s.userRepo.Create(ctx, &domain.User{
					Username:  identity.Email,
					FirstName: identity.FirstName,
					LastName:  identity.LastName,
					Email:     identity.Email,
					Provider:  identity.Provider,
				})
			}
			if err != nil {
				return nil, fmt.Errorf("creating oauth user: %w", err)
			}
		}
		logrus.WithFields(logrus.Fields{"email": identity.Email, "provider": identity.Provider}).Info("created user from oauth login")
	}
	return s.issueToken(user)
}

// AuthURL returns the provider's consent page URL with a fresh one-time state.
func (s *AuthService) AuthURL(provider string) (string, error) {
	conf, ok := s.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	state := uuid.NewString()
	s.mu.Lock()
	s.states[state] = oauthState{provider: provider, expiresAt: time.Now().Add(oauthStateTTL)}
	s.mu.Unlock()

	return conf.AuthCodeURL(state), nil
}

// HandleCallback validates the state, exchanges the code, fetches the
// provider identity, and logs the user in (creating the account if needed).
func (s *AuthService) HandleCallback(ctx context.Context, provider, state, code string) (*domain.AuthResponseDTO, error) {
	conf, ok := s.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	if !s.consumeState(state, provider) {
		return nil, ErrInvalidOAuthState
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging oauth code: %w", err)
	}

	identity, err := fetchIdentity(ctx, provider, conf.Client(ctx, token))
	if err != nil {
		return nil, err
	}
	return s.LoginExternal(ctx, identity)
}

func (s *AuthService) consumeState(state, provider string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, v := range s.states {
		if now.After(v.expiresAt) {
			delete(s.states, k)
		}
	}
	entry, ok := s.states[state]
	if !ok || entry.provider != provider {
		return false
	}
	delete(s.states, state)
	return true
}

func (s *AuthService) issueToken(user *domain.User) (*domain.AuthResponseDTO, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.Itoa(user.ID),
		"exp":      now.Add(s.jwtExpiration).Unix(),
		"iat":      now.Unix(),
		"username": user.Username,
		"email":    user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &domain.AuthResponseDTO{
		Token:    signed,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

// ValidateToken is used by the auth middleware.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

type googleUserInfo struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

type githubUser struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email   string `json:"email"`
	Primary bool   `json:"primary"`
}

func fetchIdentity(ctx context.Context, provider string, client *http.Client) (domain.ExternalIdentity, error) {
	switch provider {
	case domain.ProviderGoogle:
		var info googleUserInfo
		if err := getJSON(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
			return domain.ExternalIdentity{}, err
		}
		return domain.ExternalIdentity{
			Email:     info.Email,
			Username:  info.Email,
			FirstName: info.GivenName,
			LastName:  info.FamilyName,
			Provider:  domain.ProviderGoogle,
		}, nil

	case domain.ProviderGithub:
		var user githubUser
		if err := getJSON(ctx, client, "https://api.github.com/user", &user); err != nil {
			return domain.ExternalIdentity{}, err
		}
		email := user.Email
		if email == "" {
			// The profile email is often hidden; the emails endpoint still
			// lists the primary one under the user:email scope.
			var emails []githubEmail
			if err := getJSON(ctx, client, "https://api.github.com/user/emails", &emails); err != nil {
				return domain.ExternalIdentity{}, err
			}
			for _, e := range emails {
				if e.Primary {
					email = e.Email
					break
				}
			}
		}
		first, last := splitName(user.Name)
		return domain.ExternalIdentity{
			Email:     email,
			Username:  user.Login,
			FirstName: first,
			LastName:  last,
			Provider:  domain.ProviderGithub,
		}, nil
	}
	return domain.ExternalIdentity{}, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building userinfo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", url, err)
	}
	return nil
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch {
	case len(parts) == 0:
		return "", ""
	case len(parts) == 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
