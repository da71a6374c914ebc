package repository

import (
	"github.com/prajwalmandlik2004/indx-corporate/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db}
}

func (r *AttemptRepository) CreateAttempt(attempt *model.TestAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *AttemptRepository) UpdateAttempt(attempt *model.TestAttempt) error {
	return r.db.Save(attempt).Error
}

func (r *AttemptRepository) FindAttemptByID(id string) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	err := r.db.First(&attempt, "id = ?", id).Error
	return &attempt, err
}

func (r *AttemptRepository) ListAttempts(page, pageSize int) ([]model.TestAttempt, int64, error) {
	var attempts []model.TestAttempt
	var total int64

	if err := r.db.Model(&model.TestAttempt{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&attempts).Error
	return attempts, total, err
}
