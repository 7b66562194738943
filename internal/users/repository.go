package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/ggeorgiev0/backend-base/internal/shared/infrastructure/db"
)

// Repository 所有数据访问错误在这里统一过翻译器，
// 上层只会看到领域错误或原样透传的未知错误。
type Repository struct {
	db *gorm.DB
}

func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

func (r *Repository) Create(ctx context.Context, user *User) error {
	return db.Translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, db.Translate(err)
	}
	return &user, nil
}

func (r *Repository) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, db.Translate(err)
	}

	var items []User
	err := r.db.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, db.Translate(err)
	}
	return items, total, nil
}

func (r *Repository) Update(ctx context.Context, user *User) error {
	return db.Translate(r.db.WithContext(ctx).Save(user).Error)
}

func (r *Repository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&User{}, id)
	if res.Error != nil {
		return false, db.Translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
