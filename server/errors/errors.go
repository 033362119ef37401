package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError HTTP ステータスと利用者向けメッセージを持つアプリケーションエラー
type AppError struct {
	Code    int    `json:"status_code"` // HTTP ステータスコード
	Message string `json:"message"`     // 利用者向けメッセージ
	Err     error  `json:"-"`           // ログ用の内部エラー。シリアライズしない
}

// Error error インタフェースの実装
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap errors.Is / errors.As 用に内部エラーを返す
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode HTTP ステータスコードを返す
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage 利用者向けメッセージを返す
func (e *AppError) UserMessage() string {
	return e.Message
}

// NewNotFoundError 404 Not Found を作成
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: message,
		Err:     err,
	}
}

// NewValidationError 400 Bad Request を作成
func NewValidationError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

// NewInternalError 500 Internal Server Error を作成。
// 利用者には一般的なメッセージだけを返し、詳細はログに残す。
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "サーバ内部エラー",
		Err:     errors.Join(errors.New(message), err),
	}
}

// NewServiceUnavailableError 503 Service Unavailable を作成
func NewServiceUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Message: message,
		Err:     err,
	}
}
