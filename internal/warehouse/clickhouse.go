package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
)

const clickhouseSchema = `
CREATE TABLE IF NOT EXISTS sales_transactions (
	transaction_id   String,
	date             Date,
	product          String,
	quantity         Int32,
	unit_price       Float64,
	discount_percent Float64,
	total_amount     Float64,
	customer_id      String,
	customer_name    String,
	customer_email   String,
	customer_segment String,
	region           String,
	sales_channel    String,
	salesperson      String,
	salesperson_tier String
) ENGINE = MergeTree()
ORDER BY (date, region)
`

type clickhouseStore struct {
	conn clickhouse.Conn
}

func newClickHouseStore(cfg config.WarehouseConfig) (*clickhouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: cfg.DialTimeout,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	return &clickhouseStore{conn: conn}, nil
}

func (s *clickhouseStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *clickhouseStore) Close() error {
	return s.conn.Close()
}

func (s *clickhouseStore) EnsureSchema(ctx context.Context) error {
	if err := s.conn.Exec(ctx, clickhouseSchema); err != nil {
		return fmt.Errorf("create sales_transactions: %w", err)
	}
	return nil
}

func (s *clickhouseStore) Truncate(ctx context.Context) error {
	return s.conn.Exec(ctx, "TRUNCATE TABLE sales_transactions")
}

func (s *clickhouseStore) InsertTransactions(ctx context.Context, txs []models.Transaction) error {
	for start := 0; start < len(txs); start += InsertBatchSize {
		end := min(start+InsertBatchSize, len(txs))

		batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO sales_transactions")
		if err != nil {
			return fmt.Errorf("prepare batch: %w", err)
		}
		for _, tx := range txs[start:end] {
			if err := batch.Append(
				tx.TransactionID,
				tx.Date,
				tx.Product,
				int32(tx.Quantity),
				tx.UnitPrice,
				tx.DiscountPercent,
				tx.TotalAmount,
				tx.CustomerID,
				tx.CustomerName,
				tx.CustomerEmail,
				tx.CustomerSegment,
				tx.Region,
				tx.SalesChannel,
				tx.Salesperson,
				tx.SalespersonTier,
			); err != nil {
				return fmt.Errorf("append to batch: %w", err)
			}
		}
		if err := batch.Send(); err != nil {
			return fmt.Errorf("send batch: %w", err)
		}
	}
	return nil
}

func (s *clickhouseStore) Count(ctx context.Context) (int64, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, "SELECT count() FROM sales_transactions")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return int64(count), nil
}

func (s *clickhouseStore) FetchAll(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.conn.Query(ctx, `
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
		var quantity int32
		var date time.Time
		if err := rows.Scan(
			&tx.TransactionID, &date, &tx.Product, &quantity, &tx.UnitPrice,
			&tx.DiscountPercent, &tx.TotalAmount, &tx.CustomerID, &tx.CustomerName,
			&tx.CustomerEmail, &tx.CustomerSegment, &tx.Region, &tx.SalesChannel,
			&tx.Salesperson, &tx.SalespersonTier,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Date = date
		tx.Quantity = int(quantity)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *clickhouseStore) Summary(ctx context.Context) (models.SummaryMetrics, error) {
	var m models.SummaryMetrics
	var (
		transactions uint64
		customers    uint64
		units        uint64
		first, last  time.Time
	)
	row := s.conn.QueryRow(ctx, `
		SELECT sum(total_amount), count(), avg(total_amount),
		       uniqExact(customer_id), sum(quantity), avg(discount_percent),
		       min(date), max(date)
		FROM sales_transactions
	`)
	if err := row.Scan(&m.TotalRevenue, &transactions, &m.AvgTransaction,
		&customers, &units, &m.AvgDiscount, &first, &last); err != nil {
		return m, fmt.Errorf("summary query: %w", err)
	}
	m.Transactions = int(transactions)
	m.UniqueCustomers = int(customers)
	m.UnitsSold = int(units)
	m.FirstDate = first.Format(models.DateFormat)
	m.LastDate = last.Format(models.DateFormat)
	return m, nil
}

func (s *clickhouseStore) RegionRevenue(ctx context.Context) ([]models.RegionMetrics, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT region, sum(total_amount), count(), sum(quantity),
		       uniqExact(customer_id), avg(discount_percent)
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
		var transactions, units, customers uint64
		if err := rows.Scan(&m.Region, &m.Revenue, &transactions, &units, &customers, &m.AvgDiscount); err != nil {
			return nil, fmt.Errorf("scan region row: %w", err)
		}
		m.Transactions = int(transactions)
		m.UnitsSold = int(units)
		m.UniqueCustomers = int(customers)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *clickhouseStore) TopProducts(ctx context.Context, limit int) ([]models.ProductMetrics, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT product, sum(total_amount), sum(quantity), count(),
		       avg(unit_price), sum(total_amount) / sum(quantity),
		       avg(discount_percent)
		FROM sales_transactions
		GROUP BY product
		ORDER BY sum(total_amount) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top products query: %w", err)
	}
	defer rows.Close()

	var out []models.ProductMetrics
	for rows.Next() {
		var m models.ProductMetrics
		var units, transactions uint64
		if err := rows.Scan(&m.Product, &m.Revenue, &units, &transactions,
			&m.AvgUnitPrice, &m.RevenuePerUnit, &m.AvgDiscount); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		m.UnitsSold = int(units)
		m.Transactions = int(transactions)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *clickhouseStore) MonthlyRevenue(ctx context.Context) ([]models.MonthlyPoint, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT formatDateTime(date, '%Y-%m') AS month, sum(total_amount), count()
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
		var transactions uint64
		if err := rows.Scan(&p.Month, &p.Revenue, &transactions); err != nil {
			return nil, fmt.Errorf("scan monthly row: %w", err)
		}
		p.Transactions = int(transactions)
		out = append(out, p)
	}
	return out, rows.Err()
}
