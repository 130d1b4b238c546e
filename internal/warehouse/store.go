// Package warehouse persists the sales dataset in a SQL warehouse and serves
// the push-down aggregates the report command uses. Two drivers implement the
// same Store contract; config selects one.
package warehouse

import (
	"context"
	"fmt"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
)

// InsertBatchSize bounds the rows sent per bulk insert.
const InsertBatchSize = 5000

type Store interface {
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	InsertTransactions(ctx context.Context, txs []models.Transaction) error
	Truncate(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	FetchAll(ctx context.Context) ([]models.Transaction, error)

	// Push-down aggregates: GROUP BY runs in the warehouse, not the engine.
	Summary(ctx context.Context) (models.SummaryMetrics, error)
	RegionRevenue(ctx context.Context) ([]models.RegionMetrics, error)
	TopProducts(ctx context.Context, limit int) ([]models.ProductMetrics, error)
	MonthlyRevenue(ctx context.Context) ([]models.MonthlyPoint, error)

	Close() error
}

// Open returns the Store for the configured driver. Connections are lazy;
// Ping verifies reachability.
func Open(cfg config.WarehouseConfig) (Store, error) {
	switch cfg.Driver {
	case "clickhouse":
		return newClickHouseStore(cfg)
	case "postgres":
		return newPostgresStore(cfg)
	default:
		return nil, fmt.Errorf("unknown warehouse driver %q", cfg.Driver)
	}
}
