package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

type ProductUsecase struct {
	tx       repo.TransactionManager
	products repo.ProductRepository
	clock    Clock
	logger   *zap.Logger
}

func NewProductUsecase(tx repo.TransactionManager, products repo.ProductRepository, clock Clock, logger *zap.Logger) *ProductUsecase {
	return &ProductUsecase{tx: tx, products: products, clock: clock, logger: logger}
}

// GET /products の入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Kind     string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

type ProductOutput struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Image       string `json:"image"`
	Kind        string `json:"kind"`
	IsActive    bool   `json:"is_active"`
}

type ProductListOutput struct {
	Items []ProductOutput `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}

	items, total, err := u.products.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        in.Q,
		Kind:     in.Kind,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, u.storage("list products", err)
	}

	outs := make([]ProductOutput, 0, len(items))
	for _, p := range items {
		outs = append(outs, toProductOutput(p))
	}

	return ProductListOutput{Items: outs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *ProductUsecase) Get(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, NewValidationError("invalid id")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, NewNotFoundError("product not found")
	}
	if err != nil {
		return ProductOutput{}, u.storage("find product", err)
	}
	if !p.IsActive {
		//非公開の商品は存在しない扱い
		return ProductOutput{}, NewNotFoundError("product not found")
	}

	return toProductOutput(p), nil
}

type AdminProductInput struct {
	Title       string
	Description string
	Price       int64
	Image       string
	Kind        string
	DownloadKey string
	IsActive    bool
}

// Create は管理者による商品登録。監査ログも同じTx。
func (u *ProductUsecase) Create(ctx context.Context, caller Caller, in AdminProductInput) (ProductOutput, error) {
	if !caller.IsAdmin() {
		return ProductOutput{}, NewNotAuthorizedError("admin only")
	}
	if err := validateProductInput(in); err != nil {
		return ProductOutput{}, err
	}

	var out ProductOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		created, err := r.Products().Create(ctx, model.Product{
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			Price:       in.Price,
			Image:       in.Image,
			Kind:        model.ProductKind(in.Kind),
			DownloadKey: in.DownloadKey,
			IsActive:    in.IsActive,
		})
		if err != nil {
			return u.storage("create product", err)
		}

		if err := u.audit(ctx, r, caller, model.AuditActionCreateProduct, created.ID, nil, created); err != nil {
			return err
		}

		out = toProductOutput(created)
		return nil
	})

	if err != nil {
		return ProductOutput{}, err
	}
	return out, nil
}

// Update は管理者による商品編集。
// 価格を変えても既存注文のスナップショットには触らない。
func (u *ProductUsecase) Update(ctx context.Context, caller Caller, productID int64, in AdminProductInput) error {
	if !caller.IsAdmin() {
		return NewNotAuthorizedError("admin only")
	}
	if productID <= 0 {
		return NewValidationError("invalid id")
	}
	if err := validateProductInput(in); err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("product not found")
		}
		if err != nil {
			return u.storage("find product", err)
		}

		after := before
		after.Title = strings.TrimSpace(in.Title)
		after.Description = in.Description
		after.Price = in.Price
		after.Image = in.Image
		after.Kind = model.ProductKind(in.Kind)
		after.DownloadKey = in.DownloadKey
		after.IsActive = in.IsActive

		if err := r.Products().Update(ctx, after); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("product not found")
			}
			return u.storage("update product", err)
		}

		return u.audit(ctx, r, caller, model.AuditActionUpdateProduct, productID, before, after)
	})
}

func (u *ProductUsecase) Delete(ctx context.Context, caller Caller, productID int64) error {
	if !caller.IsAdmin() {
		return NewNotAuthorizedError("admin only")
	}
	if productID <= 0 {
		return NewValidationError("invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("product not found")
		}
		if err != nil {
			return u.storage("find product", err)
		}

		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("product not found")
			}
			return u.storage("delete product", err)
		}

		return u.audit(ctx, r, caller, model.AuditActionDeleteProduct, productID, before, nil)
	})
}

func (u *ProductUsecase) audit(ctx context.Context, r repo.TxRepos, caller Caller, action model.AuditAction, productID int64, before interface{}, after interface{}) error {
	log := model.AuditLog{
		ActorUserID:  caller.UserID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   int64String(productID),
		CreatedAt:    u.clock.Now(),
	}
	if before != nil {
		b, _ := json.Marshal(before)
		log.BeforeJSON = string(b)
	}
	if after != nil {
		a, _ := json.Marshal(after)
		log.AfterJSON = string(a)
	}

	if err := r.AuditLogs().Create(ctx, log); err != nil {
		return u.storage("create audit log", err)
	}
	return nil
}

func (u *ProductUsecase) storage(op string, err error) error {
	u.logger.Error("product storage failure", zap.String("op", op), zap.Error(err))
	return NewStorageError()
}

// 監査ログのresource_idは注文のuuidに合わせて文字列
func int64String(v int64) string {
	return strconv.FormatInt(v, 10)
}

func validateProductInput(in AdminProductInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidationError("title is required")
	}
	if in.Price < 0 {
		return NewValidationError("price must not be negative")
	}
	switch model.ProductKind(in.Kind) {
	case model.ProductKindProduct, model.ProductKindService:
		// OK
	default:
		return NewValidationError("invalid kind")
	}
	return nil
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Kind:        string(p.Kind),
		IsActive:    p.IsActive,
	}
}
