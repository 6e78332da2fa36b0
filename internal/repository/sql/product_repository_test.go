package sql

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/iyhunko/magical-emporium/internal/config"
	"github.com/iyhunko/magical-emporium/internal/model"
	"github.com/iyhunko/magical-emporium/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productRowColumns = []string{"id", "name", "description", "image_path", "price", "category", "tags", "rarity", "created_at"}

func newMockRepository(t *testing.T) (*ProductRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewProductRepository(&DB{DB: db, Driver: config.DriverPostgres}), mock
}

func newProduct() *model.Product {
	return &model.Product{
		Name:        "Orb of Foresight",
		Description: "A glowing crystal orb that shows visions of the future.",
		ImagePath:   "/images/orb.jpg",
		Price:       "500 Gold Coins",
		Category:    "Artifacts",
		Tags:        model.Tags{"scrying", "crystal"},
		Rarity:      "Legendary",
	}
}

func TestDB_Rebind(t *testing.T) {
	query := "SELECT * FROM products WHERE id = ? AND created_at < ?"

	pg := &DB{Driver: config.DriverPostgres}
	assert.Equal(t, "SELECT * FROM products WHERE id = $1 AND created_at < $2", pg.Rebind(query))

	lite := &DB{Driver: config.DriverSQLite}
	assert.Equal(t, query, lite.Rebind(query))
}

func TestProductRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		product := newProduct()
		product.ID = 99

		mock.ExpectPrepare("INSERT INTO products .* VALUES \\(\\$1, \\$2, \\$3, \\$4, \\$5, \\$6, \\$7, \\$8\\) RETURNING id").
			ExpectQuery().
			WithArgs(product.Name, product.Description, product.ImagePath, product.Price, product.Category,
				sqlmock.AnyArg(), product.Rarity, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		result, err := repo.Create(ctx, product)
		require.NoError(t, err)

		assert.Equal(t, int64(7), result.ID, "id is assigned by the store")
		assert.False(t, result.CreatedAt.IsZero())
		assert.Equal(t, time.UTC, result.CreatedAt.Location())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid product is rejected before touching the database", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		product := newProduct()
		product.Price = ""

		result, err := repo.Create(ctx, product)
		assert.ErrorIs(t, err, model.ErrInvalidProduct)
		assert.Nil(t, result)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectPrepare("INSERT INTO products").
			ExpectQuery().
			WillReturnError(&pgconn.PgError{Code: pqUniqueViolationErrCode, Detail: "Key (image_path)=(/images/orb.jpg) already exists."})

		result, err := repo.Create(ctx, newProduct())
		require.Error(t, err)
		assert.Nil(t, result)

		var uniqueErr *repository.UniqueConstraintError
		require.ErrorAs(t, err, &uniqueErr)
		assert.Contains(t, uniqueErr.Detail, "image_path")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("created_at never goes backwards", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		later := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		clock := []time.Time{later, later.Add(-time.Hour)}
		SetClock(repo, func() time.Time {
			now := clock[0]
			clock = clock[1:]
			return now
		})

		for id := 1; id <= 2; id++ {
			mock.ExpectPrepare("INSERT INTO products").
				ExpectQuery().
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
		}

		first, err := repo.Create(ctx, newProduct())
		require.NoError(t, err)
		firstCreatedAt := first.CreatedAt

		second := newProduct()
		second.ImagePath = "/images/other.jpg"
		_, err = repo.Create(ctx, second)
		require.NoError(t, err)

		assert.False(t, second.CreatedAt.Before(firstCreatedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("successful find", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		now := time.Now()
		rows := sqlmock.NewRows(productRowColumns).
			AddRow(int64(3), "Orb", "Desc", "/images/orb.jpg", "Priceless", "Curiosities", []byte(`["a","b"]`), "Rare", now)

		mock.ExpectPrepare("SELECT .* FROM products WHERE id = \\$1").
			ExpectQuery().
			WithArgs(int64(3)).
			WillReturnRows(rows)

		result, err := repo.FindByID(ctx, 3)
		require.NoError(t, err)

		assert.Equal(t, int64(3), result.ID)
		assert.Equal(t, "Orb", result.Name)
		assert.Equal(t, model.Tags{"a", "b"}, result.Tags)
		assert.Equal(t, "Rare", result.Rarity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("product not found", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectPrepare("SELECT .* FROM products WHERE id = \\$1").
			ExpectQuery().
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		result, err := repo.FindByID(ctx, 404)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("list everything", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		now := time.Now()
		rows := sqlmock.NewRows(productRowColumns).
			AddRow(int64(2), "Second", "D2", "/images/2.jpg", "10 Gold", "Wands", `[]`, "Common", now).
			AddRow(int64(1), "First", "D1", "/images/1.jpg", "20 Gold", "Rings", `["x"]`, "Epic", now.Add(-time.Minute))

		mock.ExpectPrepare("SELECT .* FROM products WHERE 1=1 ORDER BY created_at DESC, id DESC$").
			ExpectQuery().
			WillReturnRows(rows)

		result, err := repo.List(ctx, *repository.NewQuery())
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, int64(2), result[0].ID)
		assert.Equal(t, model.Tags{}, result[0].Tags)
		assert.Equal(t, model.Tags{"x"}, result[1].Tags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table returns empty slice", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectPrepare("SELECT .* FROM products").
			ExpectQuery().
			WillReturnRows(sqlmock.NewRows(productRowColumns))

		result, err := repo.List(ctx, *repository.NewQuery())
		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	})

	t.Run("list with pagination", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		query := repository.NewQuery()
		query.Limit = 10
		lastCreatedAt := time.Now().Add(-1 * time.Hour).UTC()
		query.Paginator = &repository.Paginator{
			LastID:        5,
			LastCreatedAt: lastCreatedAt,
		}

		rows := sqlmock.NewRows(productRowColumns).
			AddRow(int64(4), "Older", "D", "/images/4.jpg", "1 Copper", "Potions", `[]`, "Common", lastCreatedAt.Add(-time.Minute))

		mock.ExpectPrepare("SELECT .* FROM products WHERE 1=1 AND \\(created_at < \\$1 OR \\(created_at = \\$2 AND id < \\$3\\)\\) ORDER BY created_at DESC, id DESC LIMIT \\$4").
			ExpectQuery().
			WithArgs(lastCreatedAt, lastCreatedAt, int64(5), 10).
			WillReturnRows(rows)

		result, err := repo.List(ctx, *query)
		require.NoError(t, err)
		assert.Len(t, result, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_Count(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
