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

type ReviewUsecase struct {
	reviews  repo.ReviewRepository
	products repo.ProductRepository
	clock    Clock
	logger   *zap.Logger
}

func NewReviewUsecase(reviews repo.ReviewRepository, products repo.ProductRepository, clock Clock, logger *zap.Logger) *ReviewUsecase {
	return &ReviewUsecase{reviews: reviews, products: products, clock: clock, logger: logger}
}

type ReviewOutput struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *ReviewUsecase) Create(ctx context.Context, caller Caller, productID int64, rating int, text string) (ReviewOutput, error) {
	if caller.UserID <= 0 {
		return ReviewOutput{}, NewNotAuthorizedError("not authorized")
	}
	if productID <= 0 {
		return ReviewOutput{}, NewValidationError("invalid product id")
	}
	if rating < 1 || rating > 5 {
		return ReviewOutput{}, NewValidationError("rating must be 1..5")
	}

	//存在しない商品にはレビューできない
	if _, err := u.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ReviewOutput{}, NewNotFoundError("product not found")
		}
		return ReviewOutput{}, u.storage("find product", err)
	}

	created, err := u.reviews.Create(ctx, model.Review{
		UserID:    caller.UserID,
		ProductID: productID,
		Rating:    rating,
		Text:      strings.TrimSpace(text),
		CreatedAt: u.clock.Now(),
	})
	if err != nil {
		return ReviewOutput{}, u.storage("create review", err)
	}

	return toReviewOutput(created), nil
}

func (u *ReviewUsecase) ListByProduct(ctx context.Context, productID int64) ([]ReviewOutput, error) {
	if productID <= 0 {
		return []ReviewOutput{}, NewValidationError("invalid product id")
	}

	items, err := u.reviews.ListByProductID(ctx, productID)
	if err != nil {
		return []ReviewOutput{}, u.storage("list reviews", err)
	}

	outs := make([]ReviewOutput, 0, len(items))
	for _, r := range items {
		outs = append(outs, toReviewOutput(r))
	}
	return outs, nil
}

// Delete は投稿者本人か管理者だけ。
func (u *ReviewUsecase) Delete(ctx context.Context, caller Caller, reviewID int64) error {
	if reviewID <= 0 {
		return NewValidationError("invalid id")
	}

	rv, err := u.reviews.FindByID(ctx, reviewID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFoundError("review not found")
	}
	if err != nil {
		return u.storage("find review", err)
	}

	if rv.UserID != caller.UserID && !caller.IsAdmin() {
		return NewNotAuthorizedError("not authorized")
	}

	if err := u.reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("review not found")
		}
		return u.storage("delete review", err)
	}
	return nil
}

func (u *ReviewUsecase) storage(op string, err error) error {
	u.logger.Error("review storage failure", zap.String("op", op), zap.Error(err))
	return NewStorageError()
}

func toReviewOutput(r model.Review) ReviewOutput {
	return ReviewOutput{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}
