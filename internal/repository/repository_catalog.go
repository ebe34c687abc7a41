package repository

import (
	"context"
	"database/sql"
	"fmt"

	"partsrfq/internal/models"
)

// Catalog lookups the quote engine consumes. Products, suppliers and their
// category coverage are maintained by the regular back-office CRUD; only the
// queries the engine needs live here.

func (repo *Repository) UnderstockedProducts(ctx context.Context, tx *sql.Tx) ([]models.Product, error) {
	query := `
	SELECT
		id,
		name,
		category_id,
		stock,
		reorder_point,
		reorder_lot,
		created_at,
		updated_at
	FROM products
	WHERE stock <= reorder_point AND reorder_lot > 0
	ORDER BY id
	`

	rows, err := repo.q(tx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.UnderstockedProducts: %w", err)
	}
	defer rows.Close()

	var result []models.Product
	var p models.Product
	for rows.Next() {
		err = rows.Scan(&p.Id, &p.Name, &p.CategoryId, &p.Stock, &p.ReorderPoint, &p.ReorderLot, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.UnderstockedProducts: row scan failed: %w", err)
		}
		result = append(result, p)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.UnderstockedProducts: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) SuppliersForCategory(ctx context.Context, categoryId string, tx *sql.Tx) ([]models.Supplier, error) {
	query := `
	SELECT
		s.id,
		s.name,
		s.email,
		s.created_at,
		s.updated_at
	FROM suppliers AS s
		INNER JOIN supplier_categories AS sc ON (sc.supplier_id = s.id)
	WHERE sc.category_id = $1
	ORDER BY s.id
	`

	rows, err := repo.q(tx).QueryContext(ctx, query, categoryId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.SuppliersForCategory: %w", err)
	}
	defer rows.Close()

	var result []models.Supplier
	var s models.Supplier
	for rows.Next() {
		err = rows.Scan(&s.Id, &s.Name, &s.Email, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.SuppliersForCategory: row scan failed: %w", err)
		}
		result = append(result, s)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.SuppliersForCategory: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) SupplierByUUID(ctx context.Context, UUID string) (models.Supplier, error) {
	var s models.Supplier
	query := `
	SELECT id, name, email, created_at, updated_at
	FROM suppliers
	WHERE id = $1
	`

	row := repo.db.QueryRowContext(ctx, query, UUID)
	err := row.Scan(&s.Id, &s.Name, &s.Email, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, fmt.Errorf("repository.Repository.SupplierByUUID: %w", err)
	}
	return s, nil
}

func (repo *Repository) ProductByUUID(ctx context.Context, UUID string) (models.Product, error) {
	var p models.Product
	query := `
	SELECT id, name, category_id, stock, reorder_point, reorder_lot, created_at, updated_at
	FROM products
	WHERE id = $1
	`

	row := repo.db.QueryRowContext(ctx, query, UUID)
	err := row.Scan(&p.Id, &p.Name, &p.CategoryId, &p.Stock, &p.ReorderPoint, &p.ReorderLot, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, fmt.Errorf("repository.Repository.ProductByUUID: %w", err)
	}
	return p, nil
}

//// Fixtures

func (repo *Repository) AddCategory(ctx context.Context, category models.Category) (models.Category, error) {
	row := repo.db.QueryRowContext(ctx, "INSERT INTO categories (name) VALUES ($1) RETURNING id", category.Name)
	err := row.Scan(&category.Id)
	if err != nil {
		return category, fmt.Errorf("repository.Repository.AddCategory: %w", err)
	}
	return category, nil
}

func (repo *Repository) AddSupplier(ctx context.Context, supplier models.Supplier) (models.Supplier, error) {
	query := `
	INSERT INTO suppliers (name, email)
	VALUES ($1, $2)
	RETURNING id, created_at, updated_at
	`
	row := repo.db.QueryRowContext(ctx, query, supplier.Name, supplier.Email)
	err := row.Scan(&supplier.Id, &supplier.CreatedAt, &supplier.UpdatedAt)
	if err != nil {
		return supplier, fmt.Errorf("repository.Repository.AddSupplier: %w", err)
	}
	return supplier, nil
}

func (repo *Repository) AddSupplierCategory(ctx context.Context, supplierId, categoryId string) error {
	query := `
	INSERT INTO supplier_categories (supplier_id, category_id)
	VALUES ($1, $2)
	ON CONFLICT DO NOTHING
	`
	_, err := repo.db.ExecContext(ctx, query, supplierId, categoryId)
	if err != nil {
		return fmt.Errorf("repository.Repository.AddSupplierCategory: %w", err)
	}
	return nil
}

func (repo *Repository) AddProduct(ctx context.Context, product models.Product) (models.Product, error) {
	query := `
	INSERT INTO products (name, category_id, stock, reorder_point, reorder_lot)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at
	`
	row := repo.db.QueryRowContext(ctx, query, product.Name, product.CategoryId, product.Stock, product.ReorderPoint, product.ReorderLot)
	err := row.Scan(&product.Id, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return product, fmt.Errorf("repository.Repository.AddProduct: %w", err)
	}
	return product, nil
}

func (repo *Repository) SetProductStock(ctx context.Context, productId string, stock int) error {
	_, err := repo.db.ExecContext(ctx, "UPDATE products SET stock = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1", productId, stock)
	if err != nil {
		return fmt.Errorf("repository.Repository.SetProductStock: %w", err)
	}
	return nil
}
