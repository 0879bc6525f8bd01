package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/foodgram/internal/config"
	"github.com/localnerve/foodgram/internal/logging"
	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/localnerve/foodgram/internal/utils"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
)

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client (singleton pattern)
func InitAuthorizer(cfg *config.Config) error {
	var initErr error

	authOnce.Do(func() {
		if err := utils.PingAuthorizer(context.Background(), cfg.AuthzURL); err != nil {
			initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		log := logging.WithComponent("auth")
		log.Info().
			Str("authorizer_url", cfg.AuthzURL).
			Str("client_id", cfg.AuthzClientID).
			Str("redirect_url", cfg.SiteURL).
			Msg("initializing authorizer")

		var err error
		authClient, err = authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, cfg.SiteURL, nil)
		if err != nil {
			initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
	})

	return initErr
}

// ValidateSession validates a session cookie and returns the session email.
func ValidateSession(cookie string) (string, error) {
	if authClient == nil {
		return "", fmt.Errorf("authorizer client not initialized")
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
	})
	if err != nil {
		return "", fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return "", fmt.Errorf("session is not valid")
	}

	raw, err := json.Marshal(res.User)
	if err != nil {
		return "", fmt.Errorf("failed to read session user: %w", err)
	}
	var user struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &user); err != nil || user.Email == "" {
		return "", fmt.Errorf("session user has no email")
	}
	return user.Email, nil
}

// LoginInput is the token login payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenView is returned by login.
type TokenView struct {
	AuthToken string `json:"auth_token"`
}

// AuthService issues, checks and revokes API tokens.
type AuthService struct {
	DB     *gorm.DB
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
}

// NewAuthService creates an AuthService signing with secret.
func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		DB:     db,
		secret: []byte(secret),
		ttl:    ttl,
		log:    logging.WithComponent("auth"),
	}
}

var errBadCredentials = types.ValidationError("auth.invalid_credentials", "Unable to log in with provided credentials")

// Login checks credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (TokenView, error) {
	if input.Email == "" || input.Password == "" {
		return TokenView{}, types.ValidationError("auth.validation.required", "Email and password are required")
	}

	db := s.DB.WithContext(ctx)
	var user models.User
	err := db.Where("email = ?", strings.TrimSpace(input.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return TokenView{}, errBadCredentials
	}
	if err != nil {
		return TokenView{}, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return TokenView{}, errBadCredentials
	}

	now := time.Now()
	record := models.AuthToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
	}
	claims := jwt.RegisteredClaims{
		ID:        record.ID,
		Subject:   fmt.Sprintf("%d", user.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return TokenView{}, fmt.Errorf("failed to sign token: %w", err)
	}
	if err := db.Create(&record).Error; err != nil {
		return TokenView{}, fmt.Errorf("failed to store token: %w", err)
	}

	s.log.Info().Uint64("user_id", user.ID).Msg("token issued")
	return TokenView{AuthToken: signed}, nil
}

func (s *AuthService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, types.Unauthenticated("auth.invalid_token", "Invalid token")
	}
	return claims, nil
}

// Authenticate resolves a token to its user. Revoked tokens are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	var record models.AuthToken
	err = s.DB.WithContext(ctx).Preload("User").Where("id = ?", claims.ID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.Unauthenticated("auth.invalid_token", "Invalid token")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, types.Unauthenticated("auth.token_expired", "Token has expired")
	}
	return &record.User, nil
}

// AuthenticateSession resolves an Authorizer session cookie to the local
// user with the same email.
func (s *AuthService) AuthenticateSession(ctx context.Context, cookie string) (*models.User, error) {
	email, err := ValidateSession(cookie)
	if err != nil {
		s.log.Debug().Err(err).Msg("session rejected")
		return nil, types.Unauthenticated("auth.invalid_session", "Invalid session")
	}

	var user models.User
	err = s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.Unauthenticated("auth.unknown_user", "No account for session user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return &user, nil
}

// Logout revokes the token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Where("id = ?", claims.ID).Delete(&models.AuthToken{}).Error; err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
