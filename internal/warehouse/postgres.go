package warehouse

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sales_transactions (
	transaction_id   TEXT PRIMARY KEY,
	date             DATE NOT NULL,
	product          TEXT NOT NULL,
	quantity         INTEGER NOT NULL,
	unit_price       DOUBLE PRECISION NOT NULL,
	discount_percent DOUBLE PRECISION NOT NULL,
	total_amount     DOUBLE PRECISION NOT NULL,
	customer_id      TEXT NOT NULL,
	customer_name    TEXT NOT NULL DEFAULT '',
	customer_email   TEXT NOT NULL DEFAULT '',
	customer_segment TEXT NOT NULL DEFAULT '',
	region           TEXT NOT NULL,
	sales_channel    TEXT NOT NULL DEFAULT '',
	salesperson      TEXT NOT NULL DEFAULT '',
	salesperson_tier TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sales_transactions_date ON sales_transactions(date);
CREATE INDEX IF NOT EXISTS idx_sales_transactions_region ON sales_transactions(region);
CREATE INDEX IF NOT EXISTS idx_sales_transactions_product ON sales_transactions(product);
`

var transactionColumns = []string{
	"transaction_id", "date", "product", "quantity", "unit_price",
	"discount_percent", "total_amount", "customer_id", "customer_name",
	"customer_email", "customer_segment", "region", "sales_channel",
	"salesperson", "salesperson_tier",
}

type postgresStore struct {
	pool *pgxpool.Pool
}

func newPostgresStore(cfg config.WarehouseConfig) (*postgresStore, error) {
	dsn := postgresDSN(cfg)
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &postgresStore{pool: pool}, nil
}

func postgresDSN(cfg config.WarehouseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}
	return u.String()
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *postgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create sales_transactions: %w", err)
	}
	return nil
}

func (s *postgresStore) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "TRUNCATE TABLE sales_transactions")
	return err
}

func (s *postgresStore) InsertTransactions(ctx context.Context, txs []models.Transaction) error {
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"sales_transactions"},
		transactionColumns,
		pgx.CopyFromSlice(len(txs), func(i int) ([]any, error) {
			tx := txs[i]
			return []any{
				tx.TransactionID, tx.Date, tx.Product, tx.Quantity, tx.UnitPrice,
				tx.DiscountPercent, tx.TotalAmount, tx.CustomerID, tx.CustomerName,
				tx.CustomerEmail, tx.CustomerSegment, tx.Region, tx.SalesChannel,
				tx.Salesperson, tx.SalespersonTier,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy transactions: %w", err)
	}
	return nil
}

func (s *postgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM sales_transactions").Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

func (s *postgresStore) FetchAll(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT transaction_id, date, product, quantity, unit_price,
		       discount_percent, total_amount, customer_id, customer_name,
		       customer_email, customer_segment, region, sales_channel,
		       salesperson, salesperson_tier
		FROM sales_transactions
		ORDER BY date
	`)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.TransactionID, &tx.Date, &tx.Product, &tx.Quantity, &tx.UnitPrice,
			&tx.DiscountPercent, &tx.TotalAmount, &tx.CustomerID, &tx.CustomerName,
			&tx.CustomerEmail, &tx.CustomerSegment, &tx.Region, &tx.SalesChannel,
			&tx.Salesperson, &tx.SalespersonTier,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *postgresStore) Summary(ctx context.Context) (models.SummaryMetrics, error) {
	var m models.SummaryMetrics
	var first, last *string
	row := s.pool.QueryRow(ctx, `
		SELECT COALESCE(sum(total_amount), 0), count(*), COALESCE(avg(total_amount), 0),
		       count(DISTINCT customer_id), COALESCE(sum(quantity), 0),
		       COALESCE(avg(discount_percent), 0),
		       to_char(min(date), 'YYYY-MM-DD'), to_char(max(date), 'YYYY-MM-DD')
		FROM sales_transactions
	`)
	if err := row.Scan(&m.TotalRevenue, &m.Transactions, &m.AvgTransaction,
		&m.UniqueCustomers, &m.UnitsSold, &m.AvgDiscount, &first, &last); err != nil {
		return m, fmt.Errorf("summary query: %w", err)
	}
	if first != nil {
		m.FirstDate = *first
	}
	if last != nil {
		m.LastDate = *last
	}
	return m, nil
}

func (s *postgresStore) RegionRevenue(ctx context.Context) ([]models.RegionMetrics, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT region, sum(total_amount), count(*), sum(quantity),
		       count(DISTINCT customer_id), avg(discount_percent)
		FROM sales_transactions
		GROUP BY region
		ORDER BY sum(total_amount) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("region revenue query: %w", err)
	}
	defer rows.Close()

	var out []models.RegionMetrics
	for rows.Next() {
		var m models.RegionMetrics
		if err := rows.Scan(&m.Region, &m.Revenue, &m.Transactions, &m.UnitsSold,
			&m.UniqueCustomers, &m.AvgDiscount); err != nil {
			return nil, fmt.Errorf("scan region row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *postgresStore) TopProducts(ctx context.Context, limit int) ([]models.ProductMetrics, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product, sum(total_amount), sum(quantity), count(*),
		       avg(unit_price), sum(total_amount) / NULLIF(sum(quantity), 0),
		       avg(discount_percent)
		FROM sales_transactions
		GROUP BY product
		ORDER BY sum(total_amount) DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top products query: %w", err)
	}
	defer rows.Close()

	var out []models.ProductMetrics
	for rows.Next() {
		var m models.ProductMetrics
		if err := rows.Scan(&m.Product, &m.Revenue, &m.UnitsSold, &m.Transactions,
			&m.AvgUnitPrice, &m.RevenuePerUnit, &m.AvgDiscount); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *postgresStore) MonthlyRevenue(ctx context.Context) ([]models.MonthlyPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM') AS month, sum(total_amount), count(*)
		FROM sales_transactions
		GROUP BY month
		ORDER BY month
	`)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue query: %w", err)
	}
	defer rows.Close()

	var out []models.MonthlyPoint
	for rows.Next() {
		var p models.MonthlyPoint
		if err := rows.Scan(&p.Month, &p.Revenue, &p.Transactions); err != nil {
			return nil, fmt.Errorf("scan monthly row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
