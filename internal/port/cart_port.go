package port

import (
	"context"

	"github.com/nikolayk812/lpg-cart/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.CartSnapshot, error)
	SaveCart(ctx context.Context, cart domain.CartSnapshot) error
}

type OrderRepository interface {
	SaveOrder(ctx context.Context, order domain.Order) error
	ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error)
}

type ProductRepository interface {
	ReplaceProducts(ctx context.Context, products []domain.Product) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
}

type ProfileRepository interface {
	GetAddress(ctx context.Context, ownerID string) (domain.Address, error)
	SaveAddress(ctx context.Context, ownerID string, address domain.Address) error
}

// CartService is the cart use-case surface consumed by the CLI and decorators.
type CartService interface {
	Open(ctx context.Context, ownerID string) error
	Add(ctx context.Context, productID string, variant domain.Variant, quantity int) (domain.Result, error)
	UpdateQuantity(ctx context.Context, lineID string, quantity int) (domain.Result, error)
	Remove(ctx context.Context, lineID string) (domain.Result, error)
	Clear(ctx context.Context) (domain.Result, error)
	Sync(ctx context.Context) (domain.SyncReport, error)
	Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error)
	Snapshot() domain.CartSnapshot
}
