package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"medistore/internal/common"
	"medistore/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProductRepository interface {
	Save(ctx context.Context, product *model.Product) (*model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindAll(ctx context.Context) ([]model.Product, error)
}

type pgProductRepository struct {
	db *sql.DB
}

func NewPgProductRepository(db *sql.DB) ProductRepository {
	return &pgProductRepository{db: db}
}

func (r *pgProductRepository) Save(ctx context.Context, product *model.Product) (*model.Product, error) {
	query := `INSERT INTO products (id, name, slug, description, price, stock)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (id) DO UPDATE SET
	              name = EXCLUDED.name,
	              slug = EXCLUDED.slug,
	              description = EXCLUDED.description,
	              price = EXCLUDED.price,
	              stock = EXCLUDED.stock,
	              updated_at = CURRENT_TIMESTAMP
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		product.ID, product.Name, product.Slug, product.Description, product.Price, product.Stock,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint on slug
			return nil, fmt.Errorf("product with this slug already exists: %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("pgProductRepository.Save: %w", err)
	}
	return product, nil
}

func (r *pgProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT id, name, slug, description, price, stock, created_at, updated_at
	          FROM products WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), "FindByID")
}

func (r *pgProductRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := `SELECT id, name, slug, description, price, stock, created_at, updated_at
	          FROM products WHERE slug = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, slug), "FindBySlug")
}

func (r *pgProductRepository) scanOne(row *sql.Row, method string) (*model.Product, error) {
	product := &model.Product{}
	err := row.Scan(
		&product.ID, &product.Name, &product.Slug, &product.Description,
		&product.Price, &product.Stock, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProductRepository.%s: %w", method, err)
	}
	return product, nil
}

func (r *pgProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	query := `SELECT id, name, slug, description, price, stock, created_at, updated_at
	          FROM products ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgProductRepository.FindAll query: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description,
			&p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgProductRepository.FindAll scan: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProductRepository.FindAll rows.Err: %w", err)
	}
	return products, nil
}
