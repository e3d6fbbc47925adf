package usecase

import (
	"context"
	"errors"
	"time"

	repo "app/internal/repository"

	"go.uber.org/zap"
)

// 購入者の「ライブラリ」。DL権は別レコードでは持たず、
// COMPLETEDな注文から都度導出する（注文がCOMPLETED ⇒ DL可）。
type LibraryUsecase struct {
	entitlements repo.EntitlementRepository
	products     repo.ProductRepository
	logger       *zap.Logger
}

func NewLibraryUsecase(entitlements repo.EntitlementRepository, products repo.ProductRepository, logger *zap.Logger) *LibraryUsecase {
	return &LibraryUsecase{entitlements: entitlements, products: products, logger: logger}
}

type LibraryItemOutput struct {
	ProductID   int64     `json:"product_id"`
	Title       string    `json:"title"`
	Image       string    `json:"image,omitempty"`
	Kind        string    `json:"kind"`
	OrderID     string    `json:"order_id"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type DownloadOutput struct {
	ProductID   int64  `json:"product_id"`
	DownloadKey string `json:"download_key"`
}

func (u *LibraryUsecase) List(ctx context.Context, caller Caller) ([]LibraryItemOutput, error) {
	if caller.UserID <= 0 {
		return []LibraryItemOutput{}, NewNotAuthorizedError("not authorized")
	}

	ents, err := u.entitlements.ListByBuyerID(ctx, caller.UserID)
	if err != nil {
		return []LibraryItemOutput{}, u.storage("list entitlements", err)
	}

	ids := make([]int64, 0, len(ents))
	for _, e := range ents {
		ids = append(ids, e.ProductID)
	}
	products, err := u.products.ListByIDs(ctx, ids)
	if err != nil {
		return []LibraryItemOutput{}, u.storage("resolve products", err)
	}

	byID := make(map[int64]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}

	outs := make([]LibraryItemOutput, 0, len(ents))
	for _, e := range ents {
		//購入後に商品が消えていたら一覧から落ちる（配布物ももう引けない）
		i, ok := byID[e.ProductID]
		if !ok {
			continue
		}
		p := products[i]
		outs = append(outs, LibraryItemOutput{
			ProductID:   p.ID,
			Title:       p.Title,
			Image:       p.Image,
			Kind:        string(p.Kind),
			OrderID:     e.OrderID,
			PurchasedAt: e.FirstCompletedAt,
		})
	}

	return outs, nil
}

// Download はDL直前の権利チェック。COMPLETED注文がなければ403。
func (u *LibraryUsecase) Download(ctx context.Context, caller Caller, productID int64) (DownloadOutput, error) {
	if caller.UserID <= 0 {
		return DownloadOutput{}, NewNotAuthorizedError("not authorized")
	}
	if productID <= 0 {
		return DownloadOutput{}, NewValidationError("invalid product id")
	}

	ok, err := u.entitlements.HasCompleted(ctx, caller.UserID, productID)
	if err != nil {
		return DownloadOutput{}, u.storage("check entitlement", err)
	}
	if !ok {
		return DownloadOutput{}, NewNotAuthorizedError("not purchased")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return DownloadOutput{}, NewNotFoundError("product not found")
	}
	if err != nil {
		return DownloadOutput{}, u.storage("find product", err)
	}

	return DownloadOutput{ProductID: p.ID, DownloadKey: p.DownloadKey}, nil
}

func (u *LibraryUsecase) storage(op string, err error) error {
	u.logger.Error("library storage failure", zap.String("op", op), zap.Error(err))
	return NewStorageError()
}
