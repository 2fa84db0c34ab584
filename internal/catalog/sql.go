package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/orderparse/internal/model"
)

const productsQuery = `SELECT id, name, price, product_type, CAST(target_date AS TEXT) FROM products`

// LoadSQL reads the product table through database/sql.
// driver is "sqlite" (file path or URI as dsn) or "pgx"/"postgres".
func LoadSQL(ctx context.Context, driver, dsn string, activeOnly bool) ([]model.CatalogProduct, error) {
	db, closeDB, err := openDB(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	query := productsQuery
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY id"

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := []model.CatalogProduct{}
	for rows.Next() {
		var (
			p          model.CatalogProduct
			ptype      sql.NullString
			targetDate sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &ptype, &targetDate); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Type = model.ProductType(ptype.String)
		if p.Type == "" {
			p.Type = model.ProductRegular
		}
		if targetDate.Valid && len(targetDate.String) >= 10 {
			p.TargetDate = targetDate.String[:10]
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func openDB(ctx context.Context, driver, dsn string) (*sql.DB, func(), error) {
	switch driver {
	case "sqlite", "":
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, func() { _ = db.Close() }, nil
	case "pgx", "postgres":
		pc, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("parse dsn: %w", err)
		}
		pc.MaxConns = 2
		pc.ConnConfig.RuntimeParams["application_name"] = "orderparse"

		dialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		db := stdlib.OpenDBFromPool(pool)
		return db, func() {
			_ = db.Close()
			pool.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}
}
