package domain

import (
	"time"

	"github.com/google/uuid"
)

type NoticeKind string

const (
	NoticeOutOfStock        NoticeKind = "out_of_stock"
	NoticeAddFailed         NoticeKind = "add_failed"
	NoticeRemoveFailed      NoticeKind = "remove_failed"
	NoticeUpdateFailed      NoticeKind = "update_failed"
	NoticeStockAdjustFailed NoticeKind = "stock_adjust_failed"
)

var noticeMessages = map[NoticeKind]string{
	NoticeOutOfStock:        "Requested amount is out of stock",
	NoticeAddFailed:         "Failed to add product",
	NoticeRemoveFailed:      "Failed to remove product",
	NoticeUpdateFailed:      "Failed to update product amount",
	NoticeStockAdjustFailed: "Failed to update product stock",
}

// Notice is the user-facing outcome of a cart operation that did not go through.
type Notice struct {
	ID        uuid.UUID  `json:"id"`
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	ProductID int64      `json:"product_id"`
	At        time.Time  `json:"at"`
}

func NewNotice(kind NoticeKind, productID int64) Notice {
	return Notice{
		ID:        uuid.New(),
		Kind:      kind,
		Message:   kind.Message(),
		ProductID: productID,
		At:        time.Now().UTC(),
	}
}

func (k NoticeKind) Message() string {
	if msg, ok := noticeMessages[k]; ok {
		return msg
	}
	return string(k)
}
