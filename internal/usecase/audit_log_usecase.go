package usecase

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// 管理者操作の証跡を読む側。書く側は各usecaseが遷移と同じTxで行う。
type AuditLogUsecase struct {
	audit  repo.AuditLogRepository
	logger *zap.Logger
}

func NewAuditLogUsecase(audit repo.AuditLogRepository, logger *zap.Logger) *AuditLogUsecase {
	return &AuditLogUsecase{audit: audit, logger: logger}
}

type AuditLogListInput struct {
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

type AuditLogOutput struct {
	ID           int64     `json:"id"`
	ActorUserID  int64     `json:"actor_user_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	BeforeJSON   string    `json:"before_json,omitempty"`
	AfterJSON    string    `json:"after_json,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *AuditLogUsecase) List(ctx context.Context, caller Caller, in AuditLogListInput) ([]AuditLogOutput, error) {
	if !caller.IsAdmin() {
		return []AuditLogOutput{}, NewNotAuthorizedError("admin only")
	}

	f := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		f.ResourceType = &rt
	}
	if in.ResourceID != "" {
		f.ResourceID = &in.ResourceID
	}

	items, err := u.audit.List(ctx, f)
	if err != nil {
		u.logger.Error("audit log storage failure", zap.String("op", "list audit logs"), zap.Error(err))
		return []AuditLogOutput{}, NewStorageError()
	}

	outs := make([]AuditLogOutput, 0, len(items))
	for _, l := range items {
		outs = append(outs, AuditLogOutput{
			ID:           l.ID,
			ActorUserID:  l.ActorUserID,
			Action:       string(l.Action),
			ResourceType: string(l.ResourceType),
			ResourceID:   l.ResourceID,
			BeforeJSON:   l.BeforeJSON,
			AfterJSON:    l.AfterJSON,
			CreatedAt:    l.CreatedAt,
		})
	}
	return outs, nil
}
