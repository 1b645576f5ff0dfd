package postgres

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/frahmantamala/petshop-commerce/internal/auth"
	userDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetUserWithPermissions returns nil, nil for unknown or inactive users.
func (r *Repository) GetUserWithPermissions(ctx context.Context, userID int64) (*auth.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&u).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var permissions []string
	err = r.db.WithContext(ctx).
		Table("permissions p").
		Select("p.name").
		Joins("JOIN user_permissions up ON p.id = up.permission_id").
		Where("up.user_id = ?", userID).
		Order("p.name").
		Pluck("p.name", &permissions).Error
	if err != nil {
		return nil, err
	}

	return &auth.User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Permissions: permissions,
	}, nil
}

func (r *Repository) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("last_login_at", at).Error
}

// UpsertUser creates the user by email or updates its name, hash and status.
func (r *Repository) UpsertUser(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "password_hash", "is_active", "updated_at"}),
	}).Create(u).Error
}

// GrantPermissions ensures the named permissions exist and are granted to the
// user. Existing grants are left alone.
func (r *Repository) GrantPermissions(ctx context.Context, userID int64, names ...string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			perm := userDatamodel.Permission{Name: name}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&perm).Error; err != nil {
				return err
			}
			if err := tx.Where("name = ?", name).First(&perm).Error; err != nil {
				return err
			}
			grant := userDatamodel.UserPermission{UserID: userID, PermissionID: perm.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
