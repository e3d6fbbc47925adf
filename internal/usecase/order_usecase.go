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

// 注文のライフサイクル:
//
//	PENDING --(購入者が支払い申告)--> PROCESSING
//	PROCESSING --(管理者が承認)--> COMPLETED
//	PROCESSING --(管理者が却下)--> FAILED
//
// 逆方向の遷移はない。PENDINGのまま放置された注文も消さない。
type OrderUsecase struct {
	tx     repo.TransactionManager
	users  repo.UserRepository
	idGen  IDGenerator
	clock  Clock
	logger *zap.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	idGen IDGenerator,
	clock Clock,
	logger *zap.Logger,
) *OrderUsecase {
	return &OrderUsecase{tx: tx, users: users, idGen: idGen, clock: clock, logger: logger}
}

type PlaceOrderItemInput struct {
	ProductID int64
}

type PlaceOrderInput struct {
	Items []PlaceOrderItemInput
}

type OrderItemOutput struct {
	ProductID       int64  `json:"product_id"`
	Title           string `json:"title"`
	PriceAtPurchase int64  `json:"price_at_purchase"`

	//表示メタデータは読み出し時点のカタログから解決する。
	//商品が消えていたら空のまま返す。
	Image string `json:"image,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

type OrderOutput struct {
	ID              string            `json:"id"`
	BuyerID         int64             `json:"buyer_id"`
	Status          string            `json:"status"`
	Total           int64             `json:"total"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

// PlaceOrder は注文を作る。
// 明細（ヘッダ＋全行）は1トランザクションで、途中で失敗したら全部ロールバック。
// 価格とタイトルはこの時点のカタログからスナップショットする。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, caller Caller, in PlaceOrderInput) (OrderOutput, error) {
	if caller.UserID <= 0 {
		return OrderOutput{}, NewNotAuthorizedError("not authorized")
	}
	if len(in.Items) == 0 {
		return OrderOutput{}, NewValidationError("items must not be empty")
	}

	//buyerIdが実在するユーザーか
	buyer, err := u.users.FindByID(ctx, caller.UserID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return OrderOutput{}, NewNotFoundError("user not found")
	}
	if err != nil {
		return OrderOutput{}, u.storage("find buyer", err)
	}
	if !buyer.IsActive {
		return OrderOutput{}, NewNotAuthorizedError("account is deactivated")
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.clock.Now()

		//スナップショット
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		var total int64 = 0

		for _, it := range in.Items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewValidationError("product unavailable")
			}
			if err != nil {
				return u.storage("find product", err)
			}
			if !p.IsActive {
				return NewValidationError("product unavailable")
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:            p.ID,
				ProductTitleSnapshot: p.Title,
				PriceAtPurchase:      p.Price,
				CreatedAt:            now,
			})
			total += p.Price
		}

		//ステータスはサーバー側で必ずPENDING
		order := model.Order{
			ID:        u.idGen.NewID(),
			BuyerID:   caller.UserID,
			Status:    model.OrderStatusPending,
			Total:     total,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := r.Orders().Create(ctx, order); err != nil {
			return u.storage("create order", err)
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return u.storage("create order items", err)
		}

		out = toOrderOutput(order, orderItems, nil)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// MarkPaid は購入者の「支払った」申告。PENDING -> PROCESSING。
// 支払いの事実は検証しない（申告だけ）。所有者本人のみ。管理者でも代行不可。
func (u *OrderUsecase) MarkPaid(ctx context.Context, caller Caller, orderID string, paymentMethod string) error {
	if caller.UserID <= 0 {
		return NewNotAuthorizedError("not authorized")
	}
	if orderID == "" {
		return NewValidationError("invalid order id")
	}
	method := strings.TrimSpace(paymentMethod)
	if method == "" || len(method) > 100 {
		return NewValidationError("payment_method is required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return u.storage("find order", err)
		}

		if o.BuyerID != caller.UserID {
			return NewNotAuthorizedError("not the order owner")
		}
		if o.Status != model.OrderStatusPending {
			return NewInvalidStateError("order is not pending")
		}

		//条件付きUPDATE。同時に誰かが遷移させていたら0行になる。
		ok, err := r.Orders().UpdateStatusIfCurrent(ctx, orderID,
			model.OrderStatusPending, model.OrderStatusProcessing,
			map[string]interface{}{"payment_method": method},
		)
		if err != nil {
			return u.storage("mark paid", err)
		}
		if !ok {
			return NewInvalidStateError("order is not pending")
		}
		return nil
	})
}

// Approve は管理者の承認。PROCESSING -> COMPLETED（終端）。
// ここを越えた時点で購入者は明細のDL権を持つ（別レコードは作らない）。
func (u *OrderUsecase) Approve(ctx context.Context, caller Caller, orderID string) error {
	if !caller.IsAdmin() {
		return NewNotAuthorizedError("admin only")
	}
	if orderID == "" {
		return NewValidationError("invalid order id")
	}

	return u.transition(ctx, caller, orderID, model.OrderStatusCompleted, nil)
}

// Reject は管理者の却下。PROCESSING -> FAILED（終端）。理由は必須。
func (u *OrderUsecase) Reject(ctx context.Context, caller Caller, orderID string, reason string) error {
	if !caller.IsAdmin() {
		return NewNotAuthorizedError("admin only")
	}
	if orderID == "" {
		return NewValidationError("invalid order id")
	}
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return NewValidationError("rejection reason is required")
	}

	return u.transition(ctx, caller, orderID, model.OrderStatusFailed,
		map[string]interface{}{"rejection_reason": trimmed})
}

// PROCESSINGからの終端遷移の共通部。監査ログも同じTxで書く。
func (u *OrderUsecase) transition(ctx context.Context, caller Caller, orderID string, to model.OrderStatus, extra map[string]interface{}) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return u.storage("find order", err)
		}

		//終端は二度と動かさない。2回目のapprove/rejectは上書きせず失敗する。
		if o.Status.IsTerminal() {
			return NewInvalidStateError("order already finalized")
		}
		if o.Status != model.OrderStatusProcessing {
			return NewInvalidStateError("order is not processing")
		}

		ok, err := r.Orders().UpdateStatusIfCurrent(ctx, orderID,
			model.OrderStatusProcessing, to, extra)
		if err != nil {
			return u.storage("update order status", err)
		}
		if !ok {
			//approveとrejectが競合した場合、負けた方はここに来る
			return NewInvalidStateError("order is not processing")
		}

		//監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON := `{"status":"` + string(o.Status) + `"}`
		afterJSON := `{"status":"` + string(to) + `"}`
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  caller.UserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return u.storage("create audit log", err)
		}

		return nil
	})
}

// List は管理者なら全件、それ以外は自分の注文だけを新しい順で返す。
func (u *OrderUsecase) List(ctx context.Context, caller Caller, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	if caller.UserID <= 0 {
		return []OrderOutput{}, NewNotAuthorizedError("not authorized")
	}

	if caller.IsAdmin() {
		return u.listAdmin(ctx, f)
	}
	return u.listForBuyer(ctx, caller.UserID, f.Page, f.Limit)
}

// ListForUser は特定ユーザーの注文一覧。本人か管理者だけ。
func (u *OrderUsecase) ListForUser(ctx context.Context, caller Caller, userID int64, page int, limit int) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewValidationError("invalid user id")
	}
	if caller.UserID != userID && !caller.IsAdmin() {
		return []OrderOutput{}, NewNotAuthorizedError("not authorized")
	}
	return u.listForBuyer(ctx, userID, page, limit)
}

// Get は1件取得。所有者本人か管理者だけ。
func (u *OrderUsecase) Get(ctx context.Context, caller Caller, orderID string) (OrderOutput, error) {
	if orderID == "" {
		return OrderOutput{}, NewValidationError("invalid order id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("order not found")
		}
		if err != nil {
			return u.storage("find order", err)
		}
		if o.BuyerID != caller.UserID && !caller.IsAdmin() {
			//他人の注文は「存在しない扱い」にする
			return NewNotFoundError("order not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return u.storage("list order items", err)
		}

		meta, err := u.resolveMeta(ctx, r, items)
		if err != nil {
			return err
		}

		out = toOrderOutput(o, items, meta)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) listAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 50
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return u.storage("list orders", err)
		}
		outs, err = u.assembleOutputs(ctx, r, orders)
		return err
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) listForBuyer(ctx context.Context, buyerID int64, page int, limit int) ([]OrderOutput, error) {
	//購入者側もページングは要求どおりに通す（古い注文も辿れる）
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByBuyerID(ctx, buyerID, page, limit)
		if err != nil {
			return u.storage("list orders", err)
		}
		outs, err = u.assembleOutputs(ctx, r, orders)
		return err
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) assembleOutputs(ctx context.Context, r repo.TxRepos, orders []model.Order) ([]OrderOutput, error) {
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return nil, u.storage("list order items", err)
		}
		meta, err := u.resolveMeta(ctx, r, items)
		if err != nil {
			return nil, err
		}
		outs = append(outs, toOrderOutput(o, items, meta))
	}
	return outs, nil
}

// 表示メタデータ（画像・種別）を今のカタログから引く。
// 購入後に商品が消えているケースはそのまま欠けを許容する。
func (u *OrderUsecase) resolveMeta(ctx context.Context, r repo.TxRepos, items []model.OrderItem) (map[int64]model.Product, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := r.Products().ListByIDs(ctx, ids)
	if err != nil {
		return nil, u.storage("resolve product meta", err)
	}

	meta := make(map[int64]model.Product, len(products))
	for _, p := range products {
		meta[p.ID] = p
	}
	return meta, nil
}

func (u *OrderUsecase) storage(op string, err error) error {
	u.logger.Error("order storage failure", zap.String("op", op), zap.Error(err))
	return NewStorageError()
}

func toOrderOutput(o model.Order, items []model.OrderItem, meta map[int64]model.Product) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		oi := OrderItemOutput{
			ProductID:       it.ProductID,
			Title:           it.ProductTitleSnapshot,
			PriceAtPurchase: it.PriceAtPurchase,
		}
		if meta != nil {
			if p, ok := meta[it.ProductID]; ok {
				oi.Image = p.Image
				oi.Kind = string(p.Kind)
			}
		}
		outItems = append(outItems, oi)
	}

	return OrderOutput{
		ID:              o.ID,
		BuyerID:         o.BuyerID,
		Status:          string(o.Status),
		Total:           o.Total,
		PaymentMethod:   o.PaymentMethod,
		RejectionReason: o.RejectionReason,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
