package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
)

// EmailLogRepository defines the interface for email log data operations
type EmailLogRepository interface {
	Create(ctx context.Context, log *models.EmailLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.EmailLog, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.EmailLog, int64, error)
	ListBySender(ctx context.Context, senderID uuid.UUID, page, pageSize int) ([]models.EmailLog, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.EmailStatus, errorMessage *string) error
}

type emailLogRepository struct {
	db *gorm.DB
}

// NewEmailLogRepository creates a new email log repository instance
func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &emailLogRepository{db: db}
}

func (r *emailLogRepository) Create(ctx context.Context, log *models.EmailLog) error {
	err := r.db.WithContext(ctx).Omit("User", "SendBy").Create(log).Error
	return translateError(err, ErrEmailLogNotFound, ErrDuplicateRecord)
}

func (r *emailLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.EmailLog, error) {
	var log models.EmailLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error
	if err != nil {
		return nil, translateError(err, ErrEmailLogNotFound, ErrDuplicateRecord)
	}
	return &log, nil
}

// ListByUser returns the logs addressed to userID, newest first
func (r *emailLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.EmailLog, int64, error) {
	return r.list(ctx, "user_id = ?", userID, page, pageSize)
}

// ListBySender returns the logs sent by senderID, newest first
func (r *emailLogRepository) ListBySender(ctx context.Context, senderID uuid.UUID, page, pageSize int) ([]models.EmailLog, int64, error) {
	return r.list(ctx, "send_by_id = ?", senderID, page, pageSize)
}

func (r *emailLogRepository) list(ctx context.Context, query string, id uuid.UUID, page, pageSize int) ([]models.EmailLog, int64, error) {
	p := NewPagination(page, pageSize)
	base := r.db.WithContext(ctx).
		Model(&models.EmailLog{}).
		Where(query, id).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.EmailLog
	err := base.
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.PageSize).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *emailLogRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.EmailStatus, errorMessage *string) error {
	result := r.db.WithContext(ctx).
		Model(&models.EmailLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEmailLogNotFound
	}
	return nil
}
