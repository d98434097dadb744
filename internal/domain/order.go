package domain

import "errors"

// ErrInvalidQuantity is returned when an order quantity is zero, negative or unparseable.
var ErrInvalidQuantity = errors.New("invalid quantity")

// Order records a single purchase. Orders are immutable once placed.
type Order struct {
	ID        int64 // Unique identifier, store-assigned
	UserID    int64 // Purchasing customer's user id
	ProductID int64 // Ordered product's id
	Quantity  int64 // Ordered units, > 0 and <= stock at placement time
	CreatedAt int64 // Unix timestamp of placement
}
