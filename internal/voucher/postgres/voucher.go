package postgres

import (
	"context"
	stderrors "errors"
	"time"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	voucherDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/voucher"
	"github.com/frahmantamala/petshop-commerce/internal/voucher"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errLimitReached = stderrors.New("voucher usage limit reached")

type VoucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) voucher.RepositoryAPI {
	return &VoucherRepository{db: db}
}

func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*voucherDatamodel.Voucher, error) {
	var v voucherDatamodel.Voucher
	err := r.db.WithContext(ctx).Where("UPPER(code) = ?", voucher.NormalizeCode(code)).First(&v).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *VoucherRepository) GetByID(ctx context.Context, id int64) (*voucherDatamodel.Voucher, error) {
	var v voucherDatamodel.Voucher
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *VoucherRepository) List(ctx context.Context) ([]*voucherDatamodel.Voucher, error) {
	var vouchers []*voucherDatamodel.Voucher
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&vouchers).Error
	return vouchers, err
}

func (r *VoucherRepository) Create(ctx context.Context, v *voucherDatamodel.Voucher) error {
	err := r.db.WithContext(ctx).Create(v).Error
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.ErrVoucherCodeTaken
	}
	return err
}

func (r *VoucherRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).Model(&voucherDatamodel.Voucher{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_at": time.Now()}).Error
}

func (r *VoucherRepository) HasUsage(ctx context.Context, voucherID int64, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&voucherDatamodel.Usage{}).
		Where("voucher_id = ? AND user_email = ?", voucherID, voucher.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

// Redeem runs the conditional increment and the usage insert in one
// transaction. The WHERE clause keeps times_used from passing usage_limit under
// concurrent checkouts; the unique (voucher_id, user_email) index makes the
// usage insert idempotent.
func (r *VoucherRepository) Redeem(ctx context.Context, voucherID int64, email string, orderID *int64) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&voucherDatamodel.Voucher{}).
			Where("id = ? AND (usage_limit IS NULL OR times_used < usage_limit)", voucherID).
			Updates(map[string]interface{}{
				"times_used": gorm.Expr("times_used + 1"),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errLimitReached
		}

		usage := &voucherDatamodel.Usage{
			VoucherID: voucherID,
			UserEmail: voucher.NormalizeEmail(email),
			OrderID:   orderID,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(usage).Error
	})
	if stderrors.Is(err, errLimitReached) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *VoucherRepository) ListUsages(ctx context.Context, voucherID int64) ([]*voucherDatamodel.Usage, error) {
	var usages []*voucherDatamodel.Usage
	err := r.db.WithContext(ctx).Where("voucher_id = ?", voucherID).Order("created_at ASC, id ASC").Find(&usages).Error
	return usages, err
}
