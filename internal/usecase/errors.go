package usecase

import (
	"errors"
	"fmt"
	"time"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
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

var (
	// 注文イベント適用時の在庫不足
	ErrInsufficientStock = errors.New("insufficient stock")
	// 注文イベントの内容が不正
	ErrInvalidEvent = errors.New("invalid event")
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

const (
	maxPageLimit = 100
	maxBatchSize = 100
	// (page-1)*limit がoffsetとして溢れない範囲
	maxPage = 100_000
)
