package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/iyhunko/magical-emporium/internal/model"
	"github.com/iyhunko/magical-emporium/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	pqUniqueViolationErrCode = "23505" // PostgreSQL unique violation error code. See https://www.postgresql.org/docs/14/errcodes-appendix.html

	productColumns = "id, name, description, image_path, price, category, tags, rarity, created_at"
)

// ProductRepository implements repository.ProductRepository on top of database/sql.
type ProductRepository struct {
	db  *DB
	now func() time.Time

	// mu serialises inserts so created_at never goes backwards between them.
	mu            sync.Mutex
	lastCreatedAt time.Time
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db, now: time.Now}
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// Create inserts a new product. The store assigns ID and CreatedAt; any values
// set by the caller are overwritten.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if now.Before(r.lastCreatedAt) {
		now = r.lastCreatedAt
	}
	product.InitMeta(now)

	query := r.db.Rebind(`INSERT INTO products (name, description, image_path, price, category, tags, rarity, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx,
		product.Name, product.Description, product.ImagePath, product.Price,
		product.Category, product.Tags, product.Rarity, product.CreatedAt,
	).Scan(&product.ID)
	if err != nil {
		if detail, ok := uniqueViolation(err); ok {
			slog.Error("product violates unique constraint", slog.String("image_path", product.ImagePath), slog.String("detail", detail))
			return nil, &repository.UniqueConstraintError{Detail: detail}
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	r.lastCreatedAt = product.CreatedAt
	return product, nil
}

// List retrieves products newest first. A zero query limit returns all rows.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products WHERE 1=1")

	var args []interface{}

	// Apply pagination
	if query.Paginator != nil {
		queryBuilder.WriteString(" AND (created_at < ? OR (created_at = ? AND id < ?))")
		lastCreatedAt := query.Paginator.LastCreatedAt.UTC()
		args = append(args, lastCreatedAt, lastCreatedAt, query.Paginator.LastID)
	}

	// Order by created_at DESC, id DESC for consistent pagination
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	if query.Limit > 0 {
		queryBuilder.WriteString(" LIMIT ?")
		args = append(args, query.Limit)
	}

	stmt, err := r.db.PrepareContext(ctx, r.db.Rebind(queryBuilder.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*model.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	query := r.db.Rebind("SELECT " + productColumns + " FROM products WHERE id = ?")

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", repository.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return product, nil
}

// Count returns the number of stored products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var product model.Product
	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.ImagePath, &product.Price,
		&product.Category, &product.Tags, &product.Rarity, &product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	product.CreatedAt = product.CreatedAt.UTC()
	return &product, nil
}

func uniqueViolation(err error) (string, bool) {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == pqUniqueViolationErrCode {
		return pgError.Detail, true
	}
	var sqliteError *sqlite.Error
	if errors.As(err, &sqliteError) && sqliteError.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return sqliteError.Error(), true
	}
	return "", false
}
