package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/config"
	"github.com/TJselevani/LibraryMGMT-sub000/internal/entities"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUserNotFound     = errors.New("staff user not found")
	ErrUserExists       = errors.New("staff user already exists")
	ErrUserInactive     = errors.New("staff account is deactivated")
	ErrInvalidRole      = errors.New("invalid staff role")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid  = errors.New("username must be 3-50 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// Service manages staff accounts and credential verification.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

// NewService creates a staff authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{db: db, config: cfg}
}

// CreateStaffInput collects everything needed to register a staff account.
type CreateStaffInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
	Role        entities.StaffRole
}

// CreateStaffUser registers a staff account with a hashed password.
func (s *Service) CreateStaffUser(input CreateStaffInput) (*entities.StaffUser, error) {
	if input.Username == "" {
		return nil, ErrUsernameRequired
	}
	if input.Email == "" {
		return nil, ErrEmailRequired
	}
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(input.Username) {
		return nil, ErrUsernameInvalid
	}
	// RFC 5321 caps addresses at 254 bytes
	if len(input.Email) > 254 || !emailPattern.MatchString(input.Email) {
		return nil, ErrEmailInvalid
	}

	switch input.Role {
	case entities.StaffRoleAdmin, entities.StaffRoleLibrarian, entities.StaffRoleAssistant:
	default:
		return nil, ErrInvalidRole
	}

	var existing entities.StaffUser
	err := s.db.Where("username = ? OR email = ?", input.Username, input.Email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing staff user: %w", err)
	}

	passwordHash, err := HashPassword(input.Password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.StaffUser{
		Username:     input.Username,
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: passwordHash,
		FullName:     input.FullName,
		Role:         input.Role,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}
	return user, nil
}

// Authenticate verifies credentials by username or email. Failed attempts are
// counted and the account locks once the configured threshold is reached.
func (s *Service) Authenticate(username, password string) (*entities.StaffUser, error) {
	var user entities.StaffUser
	err := s.db.Where("username = ? OR email = ?", username, username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find staff user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.LockedUntil != nil && time.Now().Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(&user)
		return nil, err
	}

	now := time.Now()
	s.db.Model(&user).Updates(map[string]any{
		"last_login":     now,
		"login_attempts": 0,
		"locked_until":   nil,
	})
	return &user, nil
}

func (s *Service) recordFailedLogin(user *entities.StaffUser) {
	user.LoginAttempts++

	updates := map[string]any{
		"login_attempts": user.LoginAttempts,
	}

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if user.LoginAttempts >= maxAttempts {
		lockout := s.config.LockoutDuration
		if lockout == 0 {
			lockout = 30 * time.Minute
		}
		updates["locked_until"] = time.Now().Add(lockout)
	}

	s.db.Model(user).Updates(updates)
}

// GetStaffUserByID retrieves a staff account by its primary key.
func (s *Service) GetStaffUserByID(id uint) (*entities.StaffUser, error) {
	var user entities.StaffUser
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListStaffUsers returns all staff accounts ordered by username.
func (s *Service) ListStaffUsers() ([]entities.StaffUser, error) {
	var users []entities.StaffUser
	err := s.db.Order("username ASC").Find(&users).Error
	return users, err
}

// SetActive enables or disables a staff account.
func (s *Service) SetActive(id uint, active bool) error {
	result := s.db.Model(&entities.StaffUser{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ChangePassword updates a staff account's password after verifying the old one.
func (s *Service) ChangePassword(id uint, oldPassword, newPassword string) error {
	user, err := s.GetStaffUserByID(id)
	if err != nil {
		return err
	}
	if err := CheckPassword(oldPassword, user.PasswordHash); err != nil {
		return err
	}
	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("password_hash", newHash).Error
}

// Unlock clears a lockout and resets the failed attempt counter.
func (s *Service) Unlock(id uint) error {
	result := s.db.Model(&entities.StaffUser{}).Where("id = ?", id).Updates(map[string]any{
		"login_attempts": 0,
		"locked_until":   nil,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// HasUsers reports whether any staff accounts exist yet.
func (s *Service) HasUsers() (bool, error) {
	var count int64
	if err := s.db.Model(&entities.StaffUser{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
