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

type ResourceUsecase struct {
	resources repo.ResourceRepository
	logger    *zap.Logger
}

func NewResourceUsecase(resources repo.ResourceRepository, logger *zap.Logger) *ResourceUsecase {
	return &ResourceUsecase{resources: resources, logger: logger}
}

type ResourceOutput struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

type ResourceInput struct {
	Title       string
	Description string
	URL         string
	Category    string
}

func (u *ResourceUsecase) List(ctx context.Context, category string) ([]ResourceOutput, error) {
	items, err := u.resources.List(ctx, category)
	if err != nil {
		return []ResourceOutput{}, u.storage("list resources", err)
	}

	outs := make([]ResourceOutput, 0, len(items))
	for _, r := range items {
		outs = append(outs, toResourceOutput(r))
	}
	return outs, nil
}

func (u *ResourceUsecase) Get(ctx context.Context, id int64) (ResourceOutput, error) {
	if id <= 0 {
		return ResourceOutput{}, NewValidationError("invalid id")
	}

	r, err := u.resources.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ResourceOutput{}, NewNotFoundError("resource not found")
	}
	if err != nil {
		return ResourceOutput{}, u.storage("find resource", err)
	}
	return toResourceOutput(r), nil
}

func (u *ResourceUsecase) Create(ctx context.Context, caller Caller, in ResourceInput) (ResourceOutput, error) {
	if !caller.IsAdmin() {
		return ResourceOutput{}, NewNotAuthorizedError("admin only")
	}
	if err := validateResourceInput(in); err != nil {
		return ResourceOutput{}, err
	}

	created, err := u.resources.Create(ctx, model.Resource{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		URL:         strings.TrimSpace(in.URL),
		Category:    in.Category,
	})
	if err != nil {
		return ResourceOutput{}, u.storage("create resource", err)
	}
	return toResourceOutput(created), nil
}

func (u *ResourceUsecase) Update(ctx context.Context, caller Caller, id int64, in ResourceInput) error {
	if !caller.IsAdmin() {
		return NewNotAuthorizedError("admin only")
	}
	if id <= 0 {
		return NewValidationError("invalid id")
	}
	if err := validateResourceInput(in); err != nil {
		return err
	}

	err := u.resources.Update(ctx, model.Resource{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		URL:         strings.TrimSpace(in.URL),
		Category:    in.Category,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFoundError("resource not found")
	}
	if err != nil {
		return u.storage("update resource", err)
	}
	return nil
}

func (u *ResourceUsecase) Delete(ctx context.Context, caller Caller, id int64) error {
	if !caller.IsAdmin() {
		return NewNotAuthorizedError("admin only")
	}
	if id <= 0 {
		return NewValidationError("invalid id")
	}

	err := u.resources.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFoundError("resource not found")
	}
	if err != nil {
		return u.storage("delete resource", err)
	}
	return nil
}

func (u *ResourceUsecase) storage(op string, err error) error {
	u.logger.Error("resource storage failure", zap.String("op", op), zap.Error(err))
	return NewStorageError()
}

func validateResourceInput(in ResourceInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidationError("title is required")
	}
	if strings.TrimSpace(in.URL) == "" {
		return NewValidationError("url is required")
	}
	return nil
}

func toResourceOutput(r model.Resource) ResourceOutput {
	return ResourceOutput{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		Category:    r.Category,
		CreatedAt:   r.CreatedAt,
	}
}
