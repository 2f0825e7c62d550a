package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 未サインイン
	ErrUnauthenticated = errors.New("unauthenticated")
	//403 権限
	ErrForbidden = errors.New("forbidden")
	//404
	ErrNotFound = errors.New("not found")
	//409 競合
	ErrConflict = errors.New("conflict")
	//409 送信中
	ErrSubmissionInProgress = errors.New("submission in progress")
	//502 注文ヘッダの書き込み失敗
	ErrOrderHeaderWrite = errors.New("order header write failed")
	//502 明細の書き込み失敗（ヘッダは残る）
	ErrOrderItemsWrite = errors.New("order items write failed")
	//502 メニュー取得失敗
	ErrCatalogFetch = errors.New("catalog fetch failed")
	//500
	ErrInternal = errors.New("internal error")
)

// HTTPErrorはhandlerがそのままJSONにする。
// Errに種類（上のsentinel）を持つのでerrors.Isで判定できる。
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 種類からHTTPErrorを作る
func newError(kind error, message string) error {
	return &HTTPError{Status: statusOf(kind), Message: message, Err: kind}
}

// 原因も残す（errors.Isで種類と原因の両方が取れる）
func wrapError(kind error, message string, cause error) error {
	if cause == nil {
		return newError(kind, message)
	}
	return &HTTPError{Status: statusOf(kind), Message: message, Err: fmt.Errorf("%w: %w", kind, cause)}
}

func statusOf(kind error) int {
	switch kind {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict, ErrSubmissionInProgress:
		return http.StatusConflict
	case ErrOrderHeaderWrite, ErrOrderItemsWrite, ErrCatalogFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
