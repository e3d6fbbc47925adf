package usecase

import (
	"time"

	"app/internal/domain/model"
)

// Callerは操作を実行する本人。
// 「今のユーザー」を暗黙に参照せず、毎回明示的に渡す。
type Caller struct {
	UserID int64
	Role   model.Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}
