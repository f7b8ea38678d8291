package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fjod/swordshop/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "catalog_schema_migrations"

var ErrProductNotFound = errors.New("product not found")

// Provider is the read-only catalog the cart and HTTP layer consume.
type Provider interface {
	ListProducts(ctx context.Context, f Filter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type Repository struct {
	db    *sql.DB
	group singleflight.Group
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(1)
	return &Repository{db: db}, nil
}

// NewRepositoryFromDB wraps an open handle, mainly for sqlmock tests.
func NewRepositoryFromDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// RunMigrations creates the products table and seeds the sample catalog.
func (r *Repository) RunMigrations() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

const productColumns = `id, title, price, original_price, category, image_url, stock, is_new, on_sale`

func (r *Repository) ListProducts(ctx context.Context, f Filter) ([]*domain.Product, error) {
	var (
		where []string
		args  []any
	)
	lo, hi := f.PriceRange.Bounds()
	if lo > 0 {
		where = append(where, "price >= ?")
		args = append(args, lo)
	}
	if hi >= 0 {
		where = append(where, "price < ?")
		args = append(args, hi)
	}
	if f.InStockOnly {
		where = append(where, "stock > 0")
	}
	if f.OnSaleOnly {
		where = append(where, "on_sale = 1")
	}
	if c := f.category(); c != "" {
		where = append(where, "LOWER(category) = LOWER(?)")
		args = append(args, c)
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

// GetProduct loads one product. Concurrent loads of the same id share a query.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	v, err, _ := r.group.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
		p, err := scanProduct(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return p, err
	})
	if err != nil {
		return nil, err
	}

	// callers sharing a result must not see each other's edits
	p := *v.(*domain.Product)
	if p.OriginalPrice != nil {
		original := *p.OriginalPrice
		p.OriginalPrice = &original
	}
	return &p, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*domain.Product, error) {
	var (
		p        domain.Product
		original sql.NullInt64
	)
	err := s.Scan(&p.ID, &p.Title, &p.Price, &original, &p.Category, &p.ImageURL, &p.Stock, &p.IsNew, &p.OnSale)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	if original.Valid {
		v := original.Int64
		p.OriginalPrice = &v
	}
	return &p, nil
}
