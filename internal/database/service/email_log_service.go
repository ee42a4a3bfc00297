package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/database/repository"
)

// EmailLogService keeps the delivery history of outgoing mail
type EmailLogService interface {
	Record(ctx context.Context, input RecordEmailInput) (*models.EmailLog, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	ListReceived(ctx context.Context, userID uuid.UUID, page, pageSize int) (*EmailLogPage, error)
	ListSent(ctx context.Context, senderID uuid.UUID, page, pageSize int) (*EmailLogPage, error)
}

// RecordEmailInput describes a message about to be sent. UserID is resolved
// from Recipient when it belongs to a known account.
type RecordEmailInput struct {
	SendByID  *uuid.UUID
	UserID    *uuid.UUID
	Recipient string `validate:"required,email,max=254"`
	Subject   string `validate:"required,max=255"`
}

// EmailLogPage is one page of ListReceived or ListSent
type EmailLogPage struct {
	Logs     []models.EmailLog
	Total    int64
	Page     int
	PageSize int
}

type emailLogService struct {
	logRepo   repository.EmailLogRepository
	userRepo  repository.UserRepository
	validator *Validator
	logger    *slog.Logger
}

// NewEmailLogService creates a new email log service instance
func NewEmailLogService(
	logRepo repository.EmailLogRepository,
	userRepo repository.UserRepository,
	validator *Validator,
	logger *slog.Logger,
) EmailLogService {
	return &emailLogService{
		logRepo:   logRepo,
		userRepo:  userRepo,
		validator: validator,
		logger:    logger,
	}
}

func (s *emailLogService) Record(ctx context.Context, input RecordEmailInput) (*models.EmailLog, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	recipientID := input.UserID
	if recipientID == nil {
		user, err := s.userRepo.FindByEmail(ctx, input.Recipient)
		switch {
		case err == nil:
			recipientID = &user.ID
		case !errors.Is(err, repository.ErrUserNotFound):
			return nil, err
		}
	}

	log := &models.EmailLog{
		UserID:    recipientID,
		SendByID:  input.SendByID,
		Recipient: models.NormalizeEmail(input.Recipient),
		Subject:   input.Subject,
		Status:    models.EmailStatusPending,
	}

	if err := s.logRepo.Create(ctx, log); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, repository.ErrUserNotFound
		}
		s.logger.Error("❌ [EmailLogService] Failed to record email", "recipient", log.Recipient, "error", err)
		return nil, err
	}

	s.logger.Debug("📨 [EmailLogService] Email recorded", "log_id", log.ID, "recipient", log.Recipient)
	return log, nil
}

func (s *emailLogService) MarkSent(ctx context.Context, id uuid.UUID) error {
	return s.logRepo.UpdateStatus(ctx, id, models.EmailStatusSent, nil)
}

func (s *emailLogService) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	s.logger.Warn("⚠️ [EmailLogService] Email delivery failed", "log_id", id, "reason", reason)
	return s.logRepo.UpdateStatus(ctx, id, models.EmailStatusFailed, &reason)
}

func (s *emailLogService) ListReceived(ctx context.Context, userID uuid.UUID, page, pageSize int) (*EmailLogPage, error) {
	p := repository.NewPagination(page, pageSize)
	logs, total, err := s.logRepo.ListByUser(ctx, userID, p.Page, p.PageSize)
	if err != nil {
		return nil, err
	}
	return &EmailLogPage{Logs: logs, Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}

func (s *emailLogService) ListSent(ctx context.Context, senderID uuid.UUID, page, pageSize int) (*EmailLogPage, error) {
	p := repository.NewPagination(page, pageSize)
	logs, total, err := s.logRepo.ListBySender(ctx, senderID, p.Page, p.PageSize)
	if err != nil {
		return nil, err
	}
	return &EmailLogPage{Logs: logs, Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}
