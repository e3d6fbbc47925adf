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

// サポートチケット。注文と同じ「状態＋追記ログ」のパターン。
// OPEN -> IN_PROGRESS -> RESOLVED の一方向。
type TicketUsecase struct {
	tx     repo.TransactionManager
	idGen  IDGenerator
	clock  Clock
	logger *zap.Logger
}

func NewTicketUsecase(tx repo.TransactionManager, idGen IDGenerator, clock Clock, logger *zap.Logger) *TicketUsecase {
	return &TicketUsecase{tx: tx, idGen: idGen, clock: clock, logger: logger}
}

type TicketMessageOutput struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type TicketOutput struct {
	ID        string                `json:"id"`
	OwnerID   int64                 `json:"owner_id"`
	Subject   string                `json:"subject"`
	Status    string                `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	Messages  []TicketMessageOutput `json:"messages,omitempty"`
}

// Open はチケットを起票する。本体と最初のメッセージは同じTxで入る。
func (u *TicketUsecase) Open(ctx context.Context, caller Caller, subject string, text string) (TicketOutput, error) {
	if caller.UserID <= 0 {
		return TicketOutput{}, NewNotAuthorizedError("not authorized")
	}
	subject = strings.TrimSpace(subject)
	text = strings.TrimSpace(text)
	if subject == "" || len(subject) > 255 {
		return TicketOutput{}, NewValidationError("subject is required")
	}
	if text == "" {
		return TicketOutput{}, NewValidationError("message is required")
	}

	var out TicketOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.clock.Now()

		t := model.Ticket{
			ID:        u.idGen.NewID(),
			OwnerID:   caller.UserID,
			Subject:   subject,
			Status:    model.TicketStatusOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.Tickets().Create(ctx, t); err != nil {
			return u.storage("create ticket", err)
		}

		m := model.TicketMessage{
			TicketID:  t.ID,
			Sender:    senderFor(caller),
			Text:      text,
			Read:      false,
			CreatedAt: now,
		}
		if err := r.TicketMessages().Create(ctx, m); err != nil {
			return u.storage("create ticket message", err)
		}

		out = toTicketOutput(t, []model.TicketMessage{m})
		return nil
	})

	if err != nil {
		return TicketOutput{}, err
	}
	return out, nil
}

// AppendMessage はスレッドへの追記。
// RESOLVED後は購入者からは追記できない（管理者の締めメッセージだけ例外）。
func (u *TicketUsecase) AppendMessage(ctx context.Context, caller Caller, ticketID string, text string) error {
	if ticketID == "" {
		return NewValidationError("invalid ticket id")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return NewValidationError("message is required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Tickets().FindByID(ctx, ticketID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("ticket not found")
		}
		if err != nil {
			return u.storage("find ticket", err)
		}

		if t.OwnerID != caller.UserID && !caller.IsAdmin() {
			return NewNotAuthorizedError("not authorized")
		}
		if t.Status == model.TicketStatusResolved && !caller.IsAdmin() {
			return NewInvalidStateError("ticket is resolved")
		}

		if err := r.TicketMessages().Create(ctx, model.TicketMessage{
			TicketID:  ticketID,
			Sender:    senderFor(caller),
			Text:      text,
			Read:      false,
			CreatedAt: u.clock.Now(),
		}); err != nil {
			return u.storage("create ticket message", err)
		}

		//管理者が返信したらOPENは自動でIN_PROGRESSへ
		if caller.IsAdmin() && t.Status == model.TicketStatusOpen {
			if err := r.Tickets().UpdateStatus(ctx, ticketID, model.TicketStatusInProgress); err != nil {
				return u.storage("update ticket status", err)
			}
		}

		return nil
	})
}

// Get はスレッドを開く。開いた側から見た「相手のメッセージ」を既読にする。
func (u *TicketUsecase) Get(ctx context.Context, caller Caller, ticketID string) (TicketOutput, error) {
	if ticketID == "" {
		return TicketOutput{}, NewValidationError("invalid ticket id")
	}

	var out TicketOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Tickets().FindByID(ctx, ticketID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("ticket not found")
		}
		if err != nil {
			return u.storage("find ticket", err)
		}
		if t.OwnerID != caller.UserID && !caller.IsAdmin() {
			return NewNotFoundError("ticket not found")
		}

		//既読化。オーナーが開いたらADMIN発言、管理者が開いたらUSER発言。
		toMark := model.MessageSenderAdmin
		if caller.IsAdmin() {
			toMark = model.MessageSenderUser
		}
		if err := r.TicketMessages().MarkReadBySender(ctx, ticketID, toMark); err != nil {
			return u.storage("mark messages read", err)
		}

		msgs, err := r.TicketMessages().ListByTicketID(ctx, ticketID)
		if err != nil {
			return u.storage("list ticket messages", err)
		}

		out = toTicketOutput(t, msgs)
		return nil
	})

	if err != nil {
		return TicketOutput{}, err
	}
	return out, nil
}

// UpdateStatus は管理者だけ。前にしか進めない（RESOLVEDの再オープン不可）。
func (u *TicketUsecase) UpdateStatus(ctx context.Context, caller Caller, ticketID string, status string) error {
	if !caller.IsAdmin() {
		return NewNotAuthorizedError("admin only")
	}
	if ticketID == "" {
		return NewValidationError("invalid ticket id")
	}

	next := model.TicketStatus(strings.TrimSpace(status))
	switch next {
	case model.TicketStatusOpen, model.TicketStatusInProgress, model.TicketStatusResolved:
		// OK
	default:
		return NewValidationError("invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Tickets().FindByID(ctx, ticketID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFoundError("ticket not found")
		}
		if err != nil {
			return u.storage("find ticket", err)
		}

		if t.Status == next {
			return nil
		}
		if ticketRank(next) < ticketRank(t.Status) {
			return NewInvalidStateError("ticket status cannot move backwards")
		}

		if err := r.Tickets().UpdateStatus(ctx, ticketID, next); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("ticket not found")
			}
			return u.storage("update ticket status", err)
		}
		return nil
	})
}

// List は管理者なら全件、それ以外は自分のチケットだけ。
func (u *TicketUsecase) List(ctx context.Context, caller Caller) ([]TicketOutput, error) {
	if caller.UserID <= 0 {
		return []TicketOutput{}, NewNotAuthorizedError("not authorized")
	}

	var outs []TicketOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var (
			tickets []model.Ticket
			err     error
		)
		if caller.IsAdmin() {
			tickets, err = r.Tickets().ListAll(ctx)
		} else {
			tickets, err = r.Tickets().ListByOwnerID(ctx, caller.UserID)
		}
		if err != nil {
			return u.storage("list tickets", err)
		}

		outs = make([]TicketOutput, 0, len(tickets))
		for _, t := range tickets {
			//一覧ではメッセージ本文は積まない
			outs = append(outs, toTicketOutput(t, nil))
		}
		return nil
	})

	if err != nil {
		return []TicketOutput{}, err
	}
	return outs, nil
}

func (u *TicketUsecase) storage(op string, err error) error {
	u.logger.Error("ticket storage failure", zap.String("op", op), zap.Error(err))
	return NewStorageError()
}

func senderFor(caller Caller) model.MessageSender {
	if caller.IsAdmin() {
		return model.MessageSenderAdmin
	}
	return model.MessageSenderUser
}

func ticketRank(s model.TicketStatus) int {
	switch s {
	case model.TicketStatusOpen:
		return 0
	case model.TicketStatusInProgress:
		return 1
	case model.TicketStatusResolved:
		return 2
	default:
		return -1
	}
}

func toTicketOutput(t model.Ticket, msgs []model.TicketMessage) TicketOutput {
	out := TicketOutput{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Subject:   t.Subject,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
	for _, m := range msgs {
		out.Messages = append(out.Messages, TicketMessageOutput{
			ID:        m.ID,
			Sender:    string(m.Sender),
			Text:      m.Text,
			Read:      m.Read,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}
