package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

type AdminUserUsecase struct {
	users  repo.UserRepository
	audit  repo.AuditLogRepository
	clock  Clock
	logger *zap.Logger
}

func NewAdminUserUsecase(users repo.UserRepository, audit repo.AuditLogRepository, clock Clock, logger *zap.Logger) *AdminUserUsecase {
	return &AdminUserUsecase{users: users, audit: audit, clock: clock, logger: logger}
}

type AdminUserListOutput struct {
	Items []UserOutput `json:"items"`
	Total int64        `json:"total"`
}

func (u *AdminUserUsecase) List(ctx context.Context, caller Caller, page int, limit int) (AdminUserListOutput, error) {
	if !caller.IsAdmin() {
		return AdminUserListOutput{}, NewNotAuthorizedError("admin only")
	}

	users, total, err := u.users.List(ctx, page, limit)
	if err != nil {
		return AdminUserListOutput{}, u.storage("list users", err)
	}

	outs := make([]UserOutput, 0, len(users))
	for i := range users {
		outs = append(outs, toUserOutput(&users[i]))
	}
	return AdminUserListOutput{Items: outs, Total: total}, nil
}

type AdminUpdateUserInput struct {
	Role     *string
	IsActive *bool
}

// Update はロール変更・アカウント停止。
// どちらの変更でもtoken_versionを上げて古いトークンを無効化する。
func (u *AdminUserUsecase) Update(ctx context.Context, caller Caller, userID int64, in AdminUpdateUserInput) error {
	if !caller.IsAdmin() {
		return NewNotAuthorizedError("admin only")
	}
	if userID <= 0 {
		return NewValidationError("invalid user id")
	}
	if in.Role == nil && in.IsActive == nil {
		return NewValidationError("nothing to update")
	}
	if in.Role != nil {
		switch model.Role(*in.Role) {
		case model.RoleUser, model.RoleAdmin:
			// OK
		default:
			return NewValidationError("invalid role")
		}
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return NewNotFoundError("user not found")
	}
	if err != nil {
		return u.storage("find user", err)
	}

	before := *user

	if in.Role != nil {
		user.Role = model.Role(*in.Role)
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := u.users.Update(ctx, user); err != nil {
		return u.storage("update user", err)
	}
	if err := u.users.IncrementTokenVersion(ctx, userID); err != nil {
		return u.storage("increment token version", err)
	}

	beforeJSON, _ := json.Marshal(map[string]interface{}{"role": before.Role, "is_active": before.IsActive})
	afterJSON, _ := json.Marshal(map[string]interface{}{"role": user.Role, "is_active": user.IsActive})

	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  caller.UserID,
		Action:       model.AuditActionUpdateUser,
		ResourceType: model.AuditResourceUser,
		ResourceID:   int64String(userID),
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return u.storage("create audit log", err)
	}

	return nil
}

func (u *AdminUserUsecase) storage(op string, err error) error {
	u.logger.Error("admin user storage failure", zap.String("op", op), zap.Error(err))
	return NewStorageError()
}
