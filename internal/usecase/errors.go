package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラー種別コード。クライアントにはメッセージと一緒にこれを返す。
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidState  = "INVALID_STATE"
	CodeNotAuthorized = "NOT_AUTHORIZED"
	CodeStorage       = "STORAGE_ERROR"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func NewHTTPError(status int, code string, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// 書き込み前に弾く系（空のカート、却下理由なし等）
func NewValidationError(message string) error {
	return NewHTTPError(http.StatusBadRequest, CodeValidation, message)
}

func NewNotFoundError(message string) error {
	return NewHTTPError(http.StatusNotFound, CodeNotFound, message)
}

// 現在ステータスが遷移を許さない
func NewInvalidStateError(message string) error {
	return NewHTTPError(http.StatusConflict, CodeInvalidState, message)
}

// 所有者でも管理者でもない
func NewNotAuthorizedError(message string) error {
	return NewHTTPError(http.StatusForbidden, CodeNotAuthorized, message)
}

// 永続化の失敗。詳細はサーバ側ログにだけ出す。
func NewStorageError() error {
	return NewHTTPError(http.StatusInternalServerError, CodeStorage, "storage error")
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
