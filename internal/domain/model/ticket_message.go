package model

import "time"

type MessageSender string

const (
	MessageSenderUser  MessageSender = "USER"
	MessageSenderAdmin MessageSender = "ADMIN"
)

// チケット内の1メッセージ。
// Readは相手側がスレッドを開いたときにtrueへ倒れる。
type TicketMessage struct {
	ID        int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketID  string        `gorm:"type:varchar(36);not null;index" json:"ticket_id"`
	Sender    MessageSender `gorm:"type:varchar(20);not null" json:"sender"`
	Text      string        `gorm:"type:text;not null" json:"text"`
	//mysqlではREADが予約語なので列名はis_read
	Read      bool          `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
}
