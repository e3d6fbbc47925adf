package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	products   repo.ProductRepository
	tickets    repo.TicketRepository
	ticketMsgs repo.TicketMessageRepository
	auditLogs  repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository                 { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository         { return r.orderItems }
func (r *TxReposMock) Products() repo.ProductRepository             { return r.products }
func (r *TxReposMock) Tickets() repo.TicketRepository               { return r.tickets }
func (r *TxReposMock) TicketMessages() repo.TicketMessageRepository { return r.ticketMsgs }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository           { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByBuyerID(ctx context.Context, buyerID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, buyerID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) UpdateStatusIfCurrent(ctx context.Context, orderID string, from model.OrderStatus, to model.OrderStatus, extra map[string]interface{}) (bool, error) {
	args := m.Called(ctx, orderID, from, to, extra)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) ListByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepoMock) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, page, limit)
	us, _ := args.Get(0).([]model.User)
	return us, args.Get(1).(int64), args.Error(2)
}

type AuditLogRepoMock struct{ mock.Mock }

func (m *AuditLogRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditLogRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// 固定クロックとID
// =====================

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type staticIDGen struct{ id string }

func (g *staticIDGen) NewID() string { return g.id }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newOrderDeps() (*TxManagerMock, *OrderRepoMock, *OrderItemRepoMock, *ProductRepoMock, *UserRepoMock, *AuditLogRepoMock) {
	orderRepo := new(OrderRepoMock)
	itemRepo := new(OrderItemRepoMock)
	productRepo := new(ProductRepoMock)
	userRepo := new(UserRepoMock)
	auditRepo := new(AuditLogRepoMock)

	txm := &TxManagerMock{Repos: &TxReposMock{
		orders:     orderRepo,
		orderItems: itemRepo,
		products:   productRepo,
		auditLogs:  auditRepo,
	}}
	txm.On("WithinTx", mock.Anything).Return(nil)

	return txm, orderRepo, itemRepo, productRepo, userRepo, auditRepo
}

func newOrderUC(txm *TxManagerMock, userRepo *UserRepoMock) *usecase.OrderUsecase {
	return usecase.NewOrderUsecase(txm, userRepo,
		&staticIDGen{id: "order-uuid-1"}, &fixedClock{t: testNow}, zap.NewNop())
}

func activeBuyer(id int64) *model.User {
	return &model.User{ID: id, Email: "buyer@example.com", Role: model.RoleUser, IsActive: true}
}

// =====================
// PlaceOrder
// =====================

func TestPlaceOrder_CreatesPendingWithSnapshots(t *testing.T) {
	txm, orderRepo, itemRepo, productRepo, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	userRepo.On("FindByID", mock.Anything, int64(7)).Return(activeBuyer(7), nil)
	productRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Title: "動画素材パックA", Price: 1200, IsActive: true}, nil)
	productRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Product{ID: 2, Title: "BGM素材集", Price: 800, IsActive: true}, nil)

	var createdOrder model.Order
	orderRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		createdOrder = args.Get(1).(model.Order)
	}).Return(nil)
	itemRepo.On("CreateBulk", mock.Anything, "order-uuid-1", mock.Anything).Return(nil)

	out, err := uc.PlaceOrder(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser},
		usecase.PlaceOrderInput{Items: []usecase.PlaceOrderItemInput{{ProductID: 1}, {ProductID: 2}}})

	assert.NoError(t, err)
	//ステータスはクライアントが何を言おうとPENDINGで作られる
	assert.Equal(t, model.OrderStatusPending, createdOrder.Status)
	assert.Equal(t, int64(2000), createdOrder.Total)
	assert.Equal(t, "PENDING", out.Status)
	assert.Len(t, out.Items, 2)
	//スナップショットが入っている
	assert.Equal(t, "動画素材パックA", out.Items[0].Title)
	assert.Equal(t, int64(1200), out.Items[0].PriceAtPurchase)
}

func TestPlaceOrder_EmptyItemsRejected(t *testing.T) {
	txm, _, _, _, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	_, err := uc.PlaceOrder(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser},
		usecase.PlaceOrderInput{Items: nil})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, he.Code)
}

func TestPlaceOrder_UnavailableItemAbortsWholeOrder(t *testing.T) {
	txm, orderRepo, itemRepo, productRepo, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	userRepo.On("FindByID", mock.Anything, int64(7)).Return(activeBuyer(7), nil)
	productRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Title: "A", Price: 100, IsActive: true}, nil)
	//2件目が見つからない → 全体が失敗してヘッダも明細も書かれない
	productRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.PlaceOrder(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser},
		usecase.PlaceOrderInput{Items: []usecase.PlaceOrderItemInput{{ProductID: 1}, {ProductID: 2}, {ProductID: 3}}})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, he.Code)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	itemRepo.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
}

// 明細の書き込みで失敗したらヘッダごと失敗する（Txのロールバック契機）
func TestPlaceOrder_ItemWriteFailureAbortsWholeOrder(t *testing.T) {
	txm, orderRepo, itemRepo, productRepo, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	userRepo.On("FindByID", mock.Anything, int64(7)).Return(activeBuyer(7), nil)
	productRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Title: "A", Price: 100, IsActive: true}, nil)
	productRepo.On("FindByID", mock.Anything, int64(2)).Return(model.Product{ID: 2, Title: "B", Price: 200, IsActive: true}, nil)
	productRepo.On("FindByID", mock.Anything, int64(3)).Return(model.Product{ID: 3, Title: "C", Price: 300, IsActive: true}, nil)

	//ヘッダは入るが明細のINSERTが落ちるケース
	orderRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	itemRepo.On("CreateBulk", mock.Anything, "order-uuid-1", mock.Anything).Return(errors.New("insert failed"))

	out, err := uc.PlaceOrder(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser},
		usecase.PlaceOrderInput{Items: []usecase.PlaceOrderItemInput{{ProductID: 1}, {ProductID: 2}, {ProductID: 3}}})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeStorage, he.Code)
	//失敗した注文は呼び出し側に返さない
	assert.Equal(t, usecase.OrderOutput{}, out)
}

// =====================
// MarkPaid（PENDING -> PROCESSING）
// =====================

func TestMarkPaid_OwnerMovesPendingToProcessing(t *testing.T) {
	txm, orderRepo, _, _, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", BuyerID: 7, Status: model.OrderStatusPending}, nil)
	orderRepo.On("UpdateStatusIfCurrent", mock.Anything, "o1",
		model.OrderStatusPending, model.OrderStatusProcessing,
		map[string]interface{}{"payment_method": "SBP"},
	).Return(true, nil)

	err := uc.MarkPaid(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser}, "o1", "SBP")

	assert.NoError(t, err)
	orderRepo.AssertExpectations(t)
}

func TestMarkPaid_RequiresPaymentMethod(t *testing.T) {
	txm, _, _, _, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	err := uc.MarkPaid(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser}, "o1", "   ")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, he.Code)
}

func TestMarkPaid_NonOwnerRejected(t *testing.T) {
	txm, orderRepo, _, _, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", BuyerID: 7, Status: model.OrderStatusPending}, nil)

	err := uc.MarkPaid(context.Background(), usecase.Caller{UserID: 8, Role: model.RoleUser}, "o1", "SBP")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeNotAuthorized, he.Code)
}

// 管理者でも支払い申告の代行はできない
func TestMarkPaid_AdminCannotActForBuyer(t *testing.T) {
	txm, orderRepo, _, _, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", BuyerID: 7, Status: model.OrderStatusPending}, nil)

	err := uc.MarkPaid(context.Background(), usecase.Caller{UserID: 99, Role: model.RoleAdmin}, "o1", "SBP")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeNotAuthorized, he.Code)
}

func TestMarkPaid_NotPendingIsConflict(t *testing.T) {
	txm, orderRepo, _, _, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", BuyerID: 7, Status: model.OrderStatusProcessing}, nil)

	err := uc.MarkPaid(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser}, "o1", "SBP")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeInvalidState, he.Code)
}

// 読み取り後に誰かが先に遷移させた（条件付きUPDATEが0行）場合も競合扱い
func TestMarkPaid_LostRaceIsConflict(t *testing.T) {
	txm, orderRepo, _, _, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", BuyerID: 7, Status: model.OrderStatusPending}, nil)
	orderRepo.On("UpdateStatusIfCurrent", mock.Anything, "o1",
		model.OrderStatusPending, model.OrderStatusProcessing, mock.Anything,
	).Return(false, nil)

	err := uc.MarkPaid(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser}, "o1", "SBP")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeInvalidState, he.Code)
}

// =====================
// Approve / Reject（PROCESSING -> 終端）
// =====================

func TestApprove_AdminCompletesProcessingOrder(t *testing.T) {
	txm, orderRepo, _, _, userRepo, auditRepo := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", BuyerID: 7, Status: model.OrderStatusProcessing}, nil)
	orderRepo.On("UpdateStatusIfCurrent", mock.Anything, "o1",
		model.OrderStatusProcessing, model.OrderStatusCompleted, mock.Anything,
	).Return(true, nil)

	var log model.AuditLog
	auditRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		log = args.Get(1).(model.AuditLog)
	}).Return(nil)

	err := uc.Approve(context.Background(), usecase.Caller{UserID: 99, Role: model.RoleAdmin}, "o1")

	assert.NoError(t, err)
	//遷移と同じTxで監査ログが書かれる
	assert.Equal(t, model.AuditActionUpdateOrderStatus, log.Action)
	assert.Equal(t, "o1", log.ResourceID)
	assert.Equal(t, int64(99), log.ActorUserID)
	assert.JSONEq(t, `{"status":"PROCESSING"}`, log.BeforeJSON)
	assert.JSONEq(t, `{"status":"COMPLETED"}`, log.AfterJSON)
}

func TestApprove_NonAdminRejected(t *testing.T) {
	txm, _, _, _, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	err := uc.Approve(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser}, "o1")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeNotAuthorized, he.Code)
}

// 終端ステータスは上書きも再適用もできない
func TestApprove_TerminalOrderIsImmutable(t *testing.T) {
	txm, orderRepo, _, _, userRepo, auditRepo := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	for _, st := range []model.OrderStatus{model.OrderStatusCompleted, model.OrderStatusFailed} {
		orderRepo.ExpectedCalls = nil
		orderRepo.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", Status: st}, nil)

		err := uc.Approve(context.Background(), usecase.Caller{UserID: 99, Role: model.RoleAdmin}, "o1")

		he, ok := usecase.AsHTTPError(err)
		assert.True(t, ok)
		assert.Equal(t, usecase.CodeInvalidState, he.Code)
	}
	auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReject_RequiresReason(t *testing.T) {
	txm, _, _, _, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	err := uc.Reject(context.Background(), usecase.Caller{UserID: 99, Role: model.RoleAdmin}, "o1", "  ")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, he.Code)
}

func TestReject_AdminFailsProcessingOrderWithReason(t *testing.T) {
	txm, orderRepo, _, _, userRepo, auditRepo := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", Status: model.OrderStatusProcessing}, nil)
	orderRepo.On("UpdateStatusIfCurrent", mock.Anything, "o1",
		model.OrderStatusProcessing, model.OrderStatusFailed,
		map[string]interface{}{"rejection_reason": "入金が確認できない"},
	).Return(true, nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.Reject(context.Background(), usecase.Caller{UserID: 99, Role: model.RoleAdmin}, "o1", " 入金が確認できない ")

	assert.NoError(t, err)
	orderRepo.AssertExpectations(t)
}

// approveとrejectが同時に来たら片方だけが勝つ
func TestTransition_ConcurrentFinalizeLoserGetsConflict(t *testing.T) {
	txm, orderRepo, _, _, userRepo, auditRepo := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", Status: model.OrderStatusProcessing}, nil)
	orderRepo.On("UpdateStatusIfCurrent", mock.Anything, "o1",
		model.OrderStatusProcessing, model.OrderStatusCompleted, mock.Anything,
	).Return(false, nil)

	err := uc.Approve(context.Background(), usecase.Caller{UserID: 99, Role: model.RoleAdmin}, "o1")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeInvalidState, he.Code)
	auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =====================
// Get / List
// =====================

// 他人の注文は404（403ではなく存在も漏らさない）
func TestGetOrder_OtherUsersOrderLooksAbsent(t *testing.T) {
	txm, orderRepo, _, _, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", BuyerID: 7, Status: model.OrderStatusPending}, nil)

	_, err := uc.Get(context.Background(), usecase.Caller{UserID: 8, Role: model.RoleUser}, "o1")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeNotFound, he.Code)
}

// 購入後に商品が消えても注文履歴はスナップショットで読める
func TestGetOrder_SnapshotSurvivesProductDeletion(t *testing.T) {
	txm, orderRepo, itemRepo, productRepo, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("FindByID", mock.Anything, "o1").Return(model.Order{ID: "o1", BuyerID: 7, Status: model.OrderStatusCompleted, Total: 1200}, nil)
	itemRepo.On("ListByOrderID", mock.Anything, "o1").Return([]model.OrderItem{
		{OrderID: "o1", ProductID: 1, ProductTitleSnapshot: "消えた商品", PriceAtPurchase: 1200},
	}, nil)
	//カタログにはもう存在しない
	productRepo.On("ListByIDs", mock.Anything, []int64{1}).Return([]model.Product{}, nil)

	out, err := uc.Get(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser}, "o1")

	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, "消えた商品", out.Items[0].Title)
	assert.Equal(t, int64(1200), out.Items[0].PriceAtPurchase)
	//メタデータだけ欠ける
	assert.Empty(t, out.Items[0].Image)
}

func TestListOrders_BuyerSeesOnlyOwn(t *testing.T) {
	txm, orderRepo, itemRepo, productRepo, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("ListByBuyerID", mock.Anything, int64(7), 1, 50).Return([]model.Order{
		{ID: "o1", BuyerID: 7, Status: model.OrderStatusPending},
	}, int64(1), nil)
	itemRepo.On("ListByOrderID", mock.Anything, "o1").Return([]model.OrderItem{}, nil)
	productRepo.On("ListByIDs", mock.Anything, mock.Anything).Return([]model.Product{}, nil)

	outs, err := uc.List(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser}, repo.AdminOrderListFilter{})

	assert.NoError(t, err)
	assert.Len(t, outs, 1)
	orderRepo.AssertNotCalled(t, "ListAdmin", mock.Anything, mock.Anything)
}

// 購入者が指定したページングがそのままストレージまで届く
func TestListOrders_BuyerPagingReachesStorage(t *testing.T) {
	txm, orderRepo, itemRepo, productRepo, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	orderRepo.On("ListByBuyerID", mock.Anything, int64(7), 2, 100).Return([]model.Order{
		{ID: "o51", BuyerID: 7, Status: model.OrderStatusCompleted},
	}, int64(101), nil)
	itemRepo.On("ListByOrderID", mock.Anything, "o51").Return([]model.OrderItem{}, nil)
	productRepo.On("ListByIDs", mock.Anything, mock.Anything).Return([]model.Product{}, nil)

	outs, err := uc.List(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser},
		repo.AdminOrderListFilter{Page: 2, Limit: 100})

	assert.NoError(t, err)
	assert.Len(t, outs, 1)
	orderRepo.AssertExpectations(t)
}

func TestListForUser_StrangerRejected(t *testing.T) {
	txm, _, _, _, userRepo, _ := newOrderDeps()
	uc := newOrderUC(txm, userRepo)

	_, err := uc.ListForUser(context.Background(), usecase.Caller{UserID: 8, Role: model.RoleUser}, 7, 1, 50)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeNotAuthorized, he.Code)
}
