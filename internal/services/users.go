package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/localnerve/foodgram/internal/database"
	"github.com/localnerve/foodgram/internal/logging"
	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/storage"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxUsernameLength = 150
	maxEmailLength    = 254
	maxNameLength     = 150
	minPasswordLength = 8
	maxPasswordLength = 72
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// SetPasswordInput changes the viewer's password.
type SetPasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AvatarInput carries a base64 data URI.
type AvatarInput struct {
	Avatar string `json:"avatar"`
}

// UserService handles registration and profiles.
type UserService struct {
	DB       *gorm.DB
	Media    storage.Storage
	Composer *Composer
	log      zerolog.Logger
}

// NewUserService creates a UserService.
func NewUserService(db *gorm.DB, media storage.Storage, composer *Composer) *UserService {
	return &UserService{
		DB:       db,
		Media:    media,
		Composer: composer,
		log:      logging.WithComponent("users"),
	}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return types.ValidationError("users.validation.password_length",
			"Password must be %d to %d bytes long", minPasswordLength, maxPasswordLength)
	}
	return nil
}

func validateRegistration(input *RegisterInput) error {
	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)

	required := map[string]string{
		"email":      input.Email,
		"username":   input.Username,
		"first_name": input.FirstName,
		"last_name":  input.LastName,
		"password":   input.Password,
	}
	var missing []string
	for _, field := range []string{"email", "username", "first_name", "last_name", "password"} {
		if required[field] == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return types.ValidationError("users.validation.required", "Missing required fields").With("fields", missing)
	}

	if utf8.RuneCountInString(input.Username) > maxUsernameLength || !usernamePattern.MatchString(input.Username) {
		return types.ValidationError("users.validation.username",
			"Username may contain up to %d letters, digits and @/./+/-/_ only", maxUsernameLength)
	}
	if input.Username == "me" {
		return types.ValidationError("users.validation.username_reserved", "Username %q is reserved", input.Username)
	}
	if utf8.RuneCountInString(input.Email) > maxEmailLength {
		return types.ValidationError("users.validation.email", "Email may be at most %d characters", maxEmailLength)
	}
	if addr, err := mail.ParseAddress(input.Email); err != nil || addr.Address != input.Email {
		return types.ValidationError("users.validation.email", "Enter a valid email address")
	}
	if utf8.RuneCountInString(input.FirstName) > maxNameLength || utf8.RuneCountInString(input.LastName) > maxNameLength {
		return types.ValidationError("users.validation.name_length", "Names may be at most %d characters", maxNameLength)
	}
	return validatePassword(input.Password)
}

// Register creates a user account.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (RegisteredUserView, error) {
	if err := validateRegistration(&input); err != nil {
		return RegisteredUserView{}, err
	}

	db := s.DB.WithContext(ctx)
	var taken int64
	if err := db.Model(&models.User{}).
		Where("username = ? OR email = ?", input.Username, input.Email).
		Count(&taken).Error; err != nil {
		return RegisteredUserView{}, fmt.Errorf("failed to check user: %w", err)
	}
	conflict := types.ValidationError("users.validation.taken", "A user with that username or email already exists")
	if taken > 0 {
		return RegisteredUserView{}, conflict
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return RegisteredUserView{}, err
	}
	user := models.User{
		Email:     input.Email,
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  hashed,
	}
	if err := db.Create(&user).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return RegisteredUserView{}, conflict
		}
		return RegisteredUserView{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().Uint64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return RegisteredUserView{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

// Promote grants staff rights to an existing user.
func (s *UserService) Promote(ctx context.Context, userID uint64) error {
	result := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("is_staff", true)
	if result.Error != nil {
		return fmt.Errorf("failed to promote user %d: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return types.NotFound("users.not_found", "User %d not found", userID)
	}
	s.log.Info().Uint64("user_id", userID).Msg("user promoted to staff")
	return nil
}

func (s *UserService) load(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("users.not_found", "User %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return &user, nil
}

// List returns users ordered by username.
func (s *UserService) List(ctx context.Context, viewer Viewer, page PageRequest) (Page[UserView], error) {
	q := s.DB.WithContext(ctx).Model(&models.User{}).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[UserView]{}, fmt.Errorf("failed to count users: %w", err)
	}
	if err := page.Check(total); err != nil {
		return Page[UserView]{}, err
	}
	var users []models.User
	if err := q.Order("username ASC").Limit(page.Limit).Offset(page.Offset()).Find(&users).Error; err != nil {
		return Page[UserView]{}, fmt.Errorf("failed to list users: %w", err)
	}

	views, err := s.Composer.UserViews(ctx, viewer, users)
	if err != nil {
		return Page[UserView]{}, err
	}
	return Page[UserView]{Count: total, Results: views, Request: page}, nil
}

// Get returns one user composed for the viewer.
func (s *UserService) Get(ctx context.Context, viewer Viewer, id uint64) (UserView, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	return s.Composer.UserView(ctx, viewer, user)
}

// Me returns the viewer's own profile.
func (s *UserService) Me(ctx context.Context, viewer Viewer) (UserView, error) {
	if !viewer.Authenticated() {
		return UserView{}, types.Unauthenticated("auth.required", "Authentication credentials were not provided")
	}
	return s.Get(ctx, viewer, viewer.UserID)
}

// SetPassword replaces the viewer's password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, viewer Viewer, input SetPasswordInput) error {
	if !viewer.Authenticated() {
		return types.Unauthenticated("auth.required", "Authentication credentials were not provided")
	}
	user, err := s.load(ctx, viewer.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
		return types.ValidationError("users.validation.current_password", "Current password is incorrect")
	}
	if err := validatePassword(input.NewPassword); err != nil {
		return err
	}

	hashed, err := HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetAvatar stores a new avatar and removes the previous blob.
func (s *UserService) SetAvatar(ctx context.Context, viewer Viewer, input AvatarInput) (AvatarView, error) {
	if !viewer.Authenticated() {
		return AvatarView{}, types.Unauthenticated("auth.required", "Authentication credentials were not provided")
	}
	if input.Avatar == "" {
		return AvatarView{}, types.ValidationError("users.validation.avatar_required", "Avatar is required")
	}
	blob, err := storage.DecodeDataURI(input.Avatar)
	if err != nil {
		return AvatarView{}, types.ValidationError("users.validation.avatar_invalid", "%v", err)
	}
	user, err := s.load(ctx, viewer.UserID)
	if err != nil {
		return AvatarView{}, err
	}

	ref, err := s.Media.Save(ctx, "users", blob)
	if err != nil {
		return AvatarView{}, fmt.Errorf("failed to save avatar: %w", err)
	}
	oldKey := ""
	if user.Avatar.Valid {
		oldKey = user.Avatar.Data().Key
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("avatar", models.NewJSON(ref)).Error; err != nil {
		s.discardBlob(ref.Key)
		return AvatarView{}, fmt.Errorf("failed to update avatar: %w", err)
	}
	s.discardBlob(oldKey)

	return AvatarView{Avatar: s.Media.URL(ref.Key)}, nil
}

// DeleteAvatar clears the avatar. A user without one fails with NotFound.
func (s *UserService) DeleteAvatar(ctx context.Context, viewer Viewer) error {
	if !viewer.Authenticated() {
		return types.Unauthenticated("auth.required", "Authentication credentials were not provided")
	}
	user, err := s.load(ctx, viewer.UserID)
	if err != nil {
		return err
	}
	if !user.Avatar.Valid {
		return types.NotFound("users.avatar_not_found", "No avatar to delete")
	}

	key := user.Avatar.Data().Key
	if err := s.DB.WithContext(ctx).Model(user).Update("avatar", models.JSON[models.ImageRef]{}).Error; err != nil {
		return fmt.Errorf("failed to clear avatar: %w", err)
	}
	s.discardBlob(key)
	return nil
}

func (s *UserService) discardBlob(key string) {
	if key == "" {
		return
	}
	if err := s.Media.Delete(context.Background(), key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to delete avatar blob")
	}
}
