package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// カスタム作業の依頼。注文と同じく終端（COMPLETED/REJECTED）後は動かさない。
type ServiceRequestUsecase struct {
	requests repo.ServiceRequestRepository
	idGen    IDGenerator
	clock    Clock
	logger   *zap.Logger
}

func NewServiceRequestUsecase(requests repo.ServiceRequestRepository, idGen IDGenerator, clock Clock, logger *zap.Logger) *ServiceRequestUsecase {
	return &ServiceRequestUsecase{requests: requests, idGen: idGen, clock: clock, logger: logger}
}

type ServiceRequestOutput struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	Subject      string    `json:"subject"`
	Details      string    `json:"details"`
	Status       string    `json:"status"`
	AdminComment string    `json:"admin_comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *ServiceRequestUsecase) Create(ctx context.Context, caller Caller, subject string, details string) (ServiceRequestOutput, error) {
	if caller.UserID <= 0 {
		return ServiceRequestOutput{}, NewNotAuthorizedError("not authorized")
	}
	subject = strings.TrimSpace(subject)
	details = strings.TrimSpace(details)
	if subject == "" || len(subject) > 255 {
		return ServiceRequestOutput{}, NewValidationError("subject is required")
	}
	if details == "" {
		return ServiceRequestOutput{}, NewValidationError("details are required")
	}

	now := u.clock.Now()
	sr := model.ServiceRequest{
		ID:        u.idGen.NewID(),
		UserID:    caller.UserID,
		Subject:   subject,
		Details:   details,
		Status:    model.ServiceRequestStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.requests.Create(ctx, sr); err != nil {
		return ServiceRequestOutput{}, u.storage("create service request", err)
	}

	return toServiceRequestOutput(sr), nil
}

func (u *ServiceRequestUsecase) List(ctx context.Context, caller Caller) ([]ServiceRequestOutput, error) {
	if caller.UserID <= 0 {
		return []ServiceRequestOutput{}, NewNotAuthorizedError("not authorized")
	}

	var (
		items []model.ServiceRequest
		err   error
	)
	if caller.IsAdmin() {
		items, err = u.requests.ListAll(ctx)
	} else {
		items, err = u.requests.ListByUserID(ctx, caller.UserID)
	}
	if err != nil {
		return []ServiceRequestOutput{}, u.storage("list service requests", err)
	}

	outs := make([]ServiceRequestOutput, 0, len(items))
	for _, sr := range items {
		outs = append(outs, toServiceRequestOutput(sr))
	}
	return outs, nil
}

// Update は管理者のみ。ステータスとコメントを書く。
func (u *ServiceRequestUsecase) Update(ctx context.Context, caller Caller, id string, status string, adminComment string) error {
	if !caller.IsAdmin() {
		return NewNotAuthorizedError("admin only")
	}
	if id == "" {
		return NewValidationError("invalid id")
	}

	next := model.ServiceRequestStatus(strings.TrimSpace(status))
	switch next {
	case model.ServiceRequestStatusNew, model.ServiceRequestStatusInProgress,
		model.ServiceRequestStatusCompleted, model.ServiceRequestStatusRejected:
		// OK
	default:
		return NewValidationError("invalid status")
	}

	sr, err := u.requests.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFoundError("service request not found")
	}
	if err != nil {
		return u.storage("find service request", err)
	}

	//終端後は変更不可
	if sr.Status.IsTerminal() {
		return NewInvalidStateError("service request already finalized")
	}

	sr.Status = next
	sr.AdminComment = strings.TrimSpace(adminComment)

	if err := u.requests.Update(ctx, sr); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("service request not found")
		}
		return u.storage("update service request", err)
	}
	return nil
}

func (u *ServiceRequestUsecase) storage(op string, err error) error {
	u.logger.Error("service request storage failure", zap.String("op", op), zap.Error(err))
	return NewStorageError()
}

func toServiceRequestOutput(sr model.ServiceRequest) ServiceRequestOutput {
	return ServiceRequestOutput{
		ID:           sr.ID,
		UserID:       sr.UserID,
		Subject:      sr.Subject,
		Details:      sr.Details,
		Status:       string(sr.Status),
		AdminComment: sr.AdminComment,
		CreatedAt:    sr.CreatedAt,
	}
}
