package repository

import (
	"context"
	"errors"

	"github.com/iyhunko/magical-emporium/internal/model"
)

// ErrNotFound is returned when the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ProductRepository defines the data-access contract for products.
// Products are never updated or deleted through it.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	List(ctx context.Context, query Query) ([]*model.Product, error)
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	Count(ctx context.Context) (int, error)
}

// UniqueConstraintError represents a database unique constraint violation error.
type UniqueConstraintError struct {
	Detail string
}

func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}
