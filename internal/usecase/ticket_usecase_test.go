package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type TicketRepoMock struct{ mock.Mock }

func (m *TicketRepoMock) FindByID(ctx context.Context, ticketID string) (model.Ticket, error) {
	args := m.Called(ctx, ticketID)
	t, _ := args.Get(0).(model.Ticket)
	return t, args.Error(1)
}

func (m *TicketRepoMock) ListByOwnerID(ctx context.Context, ownerID int64) ([]model.Ticket, error) {
	args := m.Called(ctx, ownerID)
	ts, _ := args.Get(0).([]model.Ticket)
	return ts, args.Error(1)
}

func (m *TicketRepoMock) ListAll(ctx context.Context) ([]model.Ticket, error) {
	args := m.Called(ctx)
	ts, _ := args.Get(0).([]model.Ticket)
	return ts, args.Error(1)
}

func (m *TicketRepoMock) Create(ctx context.Context, t model.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TicketRepoMock) UpdateStatus(ctx context.Context, ticketID string, status model.TicketStatus) error {
	args := m.Called(ctx, ticketID, status)
	return args.Error(0)
}

func (m *TicketRepoMock) CountNotResolved(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type TicketMessageRepoMock struct{ mock.Mock }

func (m *TicketMessageRepoMock) Create(ctx context.Context, msg model.TicketMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *TicketMessageRepoMock) ListByTicketID(ctx context.Context, ticketID string) ([]model.TicketMessage, error) {
	args := m.Called(ctx, ticketID)
	ms, _ := args.Get(0).([]model.TicketMessage)
	return ms, args.Error(1)
}

func (m *TicketMessageRepoMock) MarkReadBySender(ctx context.Context, ticketID string, sender model.MessageSender) error {
	args := m.Called(ctx, ticketID, sender)
	return args.Error(0)
}

func (m *TicketMessageRepoMock) CountUnreadForOwner(ctx context.Context, ownerID int64) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func newTicketDeps() (*TxManagerMock, *TicketRepoMock, *TicketMessageRepoMock) {
	ticketRepo := new(TicketRepoMock)
	msgRepo := new(TicketMessageRepoMock)

	txm := &TxManagerMock{Repos: &TxReposMock{
		tickets:    ticketRepo,
		ticketMsgs: msgRepo,
	}}
	txm.On("WithinTx", mock.Anything).Return(nil)

	return txm, ticketRepo, msgRepo
}

func newTicketUC(txm *TxManagerMock) *usecase.TicketUsecase {
	return usecase.NewTicketUsecase(txm, &staticIDGen{id: "ticket-uuid-1"}, &fixedClock{t: testNow}, zap.NewNop())
}

func TestOpenTicket_CreatesTicketWithFirstMessage(t *testing.T) {
	txm, ticketRepo, msgRepo := newTicketDeps()
	uc := newTicketUC(txm)

	var created model.Ticket
	ticketRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(model.Ticket)
	}).Return(nil)

	var firstMsg model.TicketMessage
	msgRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		firstMsg = args.Get(1).(model.TicketMessage)
	}).Return(nil)

	out, err := uc.Open(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser},
		"ダウンロードできない", "購入した素材が落とせません")

	assert.NoError(t, err)
	assert.Equal(t, model.TicketStatusOpen, created.Status)
	assert.Equal(t, int64(7), created.OwnerID)
	assert.Equal(t, "ticket-uuid-1", firstMsg.TicketID)
	assert.Equal(t, model.MessageSenderUser, firstMsg.Sender)
	assert.Len(t, out.Messages, 1)
}

// RESOLVED後に購入者は追記できない
func TestAppendMessage_ResolvedBlocksOwner(t *testing.T) {
	txm, ticketRepo, msgRepo := newTicketDeps()
	uc := newTicketUC(txm)

	ticketRepo.On("FindByID", mock.Anything, "t1").Return(model.Ticket{ID: "t1", OwnerID: 7, Status: model.TicketStatusResolved}, nil)

	err := uc.AppendMessage(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser}, "t1", "まだ困っています")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeInvalidState, he.Code)
	msgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 管理者はRESOLVED後でも締めの一言を入れられる
func TestAppendMessage_ResolvedAllowsAdmin(t *testing.T) {
	txm, ticketRepo, msgRepo := newTicketDeps()
	uc := newTicketUC(txm)

	ticketRepo.On("FindByID", mock.Anything, "t1").Return(model.Ticket{ID: "t1", OwnerID: 7, Status: model.TicketStatusResolved}, nil)
	msgRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.AppendMessage(context.Background(), usecase.Caller{UserID: 99, Role: model.RoleAdmin}, "t1", "対応を完了しました")

	assert.NoError(t, err)
	msgRepo.AssertExpectations(t)
}

// 管理者の最初の返信でOPENはIN_PROGRESSへ
func TestAppendMessage_AdminReplyMovesOpenToInProgress(t *testing.T) {
	txm, ticketRepo, msgRepo := newTicketDeps()
	uc := newTicketUC(txm)

	ticketRepo.On("FindByID", mock.Anything, "t1").Return(model.Ticket{ID: "t1", OwnerID: 7, Status: model.TicketStatusOpen}, nil)
	msgRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	ticketRepo.On("UpdateStatus", mock.Anything, "t1", model.TicketStatusInProgress).Return(nil)

	err := uc.AppendMessage(context.Background(), usecase.Caller{UserID: 99, Role: model.RoleAdmin}, "t1", "確認します")

	assert.NoError(t, err)
	ticketRepo.AssertExpectations(t)
}

func TestAppendMessage_StrangerRejected(t *testing.T) {
	txm, ticketRepo, _ := newTicketDeps()
	uc := newTicketUC(txm)

	ticketRepo.On("FindByID", mock.Anything, "t1").Return(model.Ticket{ID: "t1", OwnerID: 7, Status: model.TicketStatusOpen}, nil)

	err := uc.AppendMessage(context.Background(), usecase.Caller{UserID: 8, Role: model.RoleUser}, "t1", "便乗")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeNotAuthorized, he.Code)
}

// スレッドを開くと相手側のメッセージが既読になる
func TestGetTicket_OwnerMarksAdminMessagesRead(t *testing.T) {
	txm, ticketRepo, msgRepo := newTicketDeps()
	uc := newTicketUC(txm)

	ticketRepo.On("FindByID", mock.Anything, "t1").Return(model.Ticket{ID: "t1", OwnerID: 7, Status: model.TicketStatusInProgress}, nil)
	msgRepo.On("MarkReadBySender", mock.Anything, "t1", model.MessageSenderAdmin).Return(nil)
	msgRepo.On("ListByTicketID", mock.Anything, "t1").Return([]model.TicketMessage{
		{ID: 1, TicketID: "t1", Sender: model.MessageSenderAdmin, Text: "確認します", Read: true},
	}, nil)

	out, err := uc.Get(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser}, "t1")

	assert.NoError(t, err)
	assert.Len(t, out.Messages, 1)
	msgRepo.AssertExpectations(t)
}

// チケットのステータスは前にしか進めない
func TestUpdateTicketStatus_BackwardsRejected(t *testing.T) {
	txm, ticketRepo, _ := newTicketDeps()
	uc := newTicketUC(txm)

	ticketRepo.On("FindByID", mock.Anything, "t1").Return(model.Ticket{ID: "t1", Status: model.TicketStatusResolved}, nil)

	err := uc.UpdateStatus(context.Background(), usecase.Caller{UserID: 99, Role: model.RoleAdmin}, "t1", "OPEN")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeInvalidState, he.Code)
}

func TestUpdateTicketStatus_NonAdminRejected(t *testing.T) {
	txm, _, _ := newTicketDeps()
	uc := newTicketUC(txm)

	err := uc.UpdateStatus(context.Background(), usecase.Caller{UserID: 7, Role: model.RoleUser}, "t1", "RESOLVED")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeNotAuthorized, he.Code)
}
