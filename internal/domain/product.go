package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrProductAlreadyExists is returned when a product name is already taken.
	// Product names are unique across the whole catalog, not per seller.
	ErrProductAlreadyExists = errors.New("product already exists")
	// ErrProductNotFound is returned when a product does not exist or is not
	// owned by the requesting seller. The two cases are deliberately
	// indistinguishable so sellers cannot probe each other's inventory.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidPrice is returned when a price is malformed or negative.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInsufficientStock is returned when an order asks for more units than are available.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product represents a catalog listing owned by a single seller.
type Product struct {
	ID          int64           // Unique identifier, store-assigned
	Name        string          // Listing name, globally unique
	Description string          // Optional free-form text
	Price       decimal.Decimal // Unit price, two-place precision, non-negative
	Quantity    int64           // Remaining purchasable units, never negative
	SellerID    int64           // Owning seller's user id
	Version     int64           // Incremented on every mutation
	CreatedAt   int64           // Unix timestamp of listing creation
}

// ProductPatch carries the fields of a partial product update.
// A nil field leaves the stored value unchanged.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int64
}

// Empty reports whether the patch would change nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Quantity == nil
}
