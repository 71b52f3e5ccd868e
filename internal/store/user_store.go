package store

import (
	"context"
	"errors"
	"strings"

	"autostock/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserStore manages login identities and credentials.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateTempPassword returns a random one-time password handed out on
// account creation and resets.
func GenerateTempPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Authenticate verifies a username/password pair. Unknown username, wrong
// password and inactive account are indistinguishable to the caller.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a comparison anyway so the timing matches the wrong-password path.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != model.UserActive {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// FindByUsername loads the current record for an identity. The authorization
// middleware uses this on every request instead of trusting token claims.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindInBusiness loads a user scoped to one business.
func (s *UserStore) FindInBusiness(ctx context.Context, businessID, userID uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", userID, businessID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateSeller creates a seller account for a business with a generated
// temporary password, returned once to the caller.
func (s *UserStore) CreateSeller(ctx context.Context, businessID uint, username string) (*model.User, string, error) {
	if username == "" {
		return nil, "", ErrInvalidInput
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", ErrDuplicateUsername
	}

	temp := GenerateTempPassword()
	hash, err := HashPassword(temp)
	if err != nil {
		return nil, "", err
	}

	user := model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleSeller,
		BusinessID:   &businessID,
		Status:       model.UserActive,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// A concurrent writer can slip past the count check; the unique
		// index on username is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrDuplicateUsername
		}
		return nil, "", err
	}
	return &user, temp, nil
}

// ListByBusiness returns all users of one business.
func (s *UserStore) ListByBusiness(ctx context.Context, businessID uint) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("username").
		Find(&users).Error
	return users, err
}

// SetStatus activates or deactivates a user within a business. A deactivated
// user loses access on their next request, not at token expiry.
func (s *UserStore) SetStatus(ctx context.Context, businessID, userID uint, status string) error {
	if status != model.UserActive && status != model.UserInactive {
		return ErrInvalidInput
	}
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND business_id = ?", userID, businessID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ChangePassword rotates a user's own password after verifying the current one.
func (s *UserStore) ChangePassword(ctx context.Context, userID uint, current, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidInput
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&user).Update("password_hash", hash).Error
}

// ResetPassword replaces a business user's password with a fresh temporary
// one, visible to the next Authenticate call only.
func (s *UserStore) ResetPassword(ctx context.Context, businessID, userID uint) (string, error) {
	temp := GenerateTempPassword()
	hash, err := HashPassword(temp)
	if err != nil {
		return "", err
	}
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND business_id = ?", userID, businessID).
		Update("password_hash", hash)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", ErrNotFound
	}
	return temp, nil
}

// ResetAdminPassword resets the password of a business's admin account.
func (s *UserStore) ResetAdminPassword(ctx context.Context, businessID uint) (string, error) {
	var admin model.User
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND role = ?", businessID, model.RoleAdmin).
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return s.ResetPassword(ctx, businessID, admin.ID)
}

// Count returns the total number of users on the platform.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}

// EnsureSuperAdmin seeds the platform operator account on first boot. If a
// superadmin already exists this is a no-op; the password of an existing
// account is never touched here.
func (s *UserStore) EnsureSuperAdmin(ctx context.Context, username, password string) (*model.User, bool, error) {
	if username == "" || password == "" {
		return nil, false, ErrInvalidInput
	}

	var existing model.User
	err := s.db.WithContext(ctx).Where("role = ?", model.RoleSuperAdmin).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	admin := model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		Status:       model.UserActive,
	}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return nil, false, err
	}
	return &admin, true, nil
}
