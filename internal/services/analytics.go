package services

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

const (
	batchSize    = 10000
	maxWorkers   = 10
	cacheVersion = "v1"
)

// PrecomputedData holds every aggregate the dashboard serves, computed once
// per dataset load. Transactions are retained for filtered queries.
type PrecomputedData struct {
	Summary         models.SummaryMetrics
	Regions         []models.RegionMetrics
	Products        []models.ProductMetrics
	Monthly         []models.MonthlyPoint
	MonthlyByRegion []models.RegionSeries
	Channels        []models.ChannelMetrics
	Segments        []models.SegmentMetrics
	Salespeople     []models.SalespersonMetrics
	Matrix          []models.MatrixCell
	Transactions    []models.Transaction
	RecordCount     int64
	SkippedCount    int64
	LastModified    time.Time
	FileModTime     time.Time
	FileSize        int64
}

type Analytics struct {
	mu               sync.RWMutex
	precomputed      *PrecomputedData
	csvPath          string
	cacheDir         string
	recordsProcessed atomic.Int64
	loadDuration     atomic.Int64
	cacheHit         atomic.Bool
	logger           *slog.Logger

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

func NewAnalytics() *Analytics {
	return &Analytics{
		precomputed: &PrecomputedData{},
		cacheDir:    ".cache",
		logger:      slog.Default(),
	}
}

// SetCacheDir overrides the snapshot cache location. Call before LoadFromCSV.
func (a *Analytics) SetCacheDir(dir string) {
	a.cacheDir = dir
}

// SetData replaces the dataset with an in-memory slice, recomputing every
// aggregate. Warehouse-sourced loads and tests use this path.
func (a *Analytics) SetData(data []models.Transaction) {
	pre := computeAll(data)
	pre.LastModified = time.Now()

	a.mu.Lock()
	a.precomputed = pre
	a.mu.Unlock()

	a.recordsProcessed.Store(int64(len(data)))
}

func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) error {
	a.csvPath = filename

	info, statErr := os.Stat(filename)
	if cached, err := a.loadFromCache(filename); err == nil && statErr == nil {
		if cached.FileModTime.Equal(info.ModTime()) && cached.FileSize == info.Size() {
			a.mu.Lock()
			a.precomputed = cached
			a.mu.Unlock()
			a.recordsProcessed.Store(cached.RecordCount)
			a.cacheHit.Store(true)
			a.logger.Info("loaded from cache", "records", cached.RecordCount)
			return nil
		}
	}
	a.cacheHit.Store(false)

	start := time.Now()
	a.logger.Info("processing sales data", "filename", filename)

	if err := a.streamProcessCSV(ctx, filename); err != nil {
		return fmt.Errorf("process csv: %w", err)
	}

	if statErr == nil {
		a.mu.Lock()
		a.precomputed.FileModTime = info.ModTime()
		a.precomputed.FileSize = info.Size()
		a.mu.Unlock()
	}

	if err := a.saveToCache(filename); err != nil {
		a.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	a.loadDuration.Store(int64(duration))
	count := a.recordsProcessed.Load()
	a.mu.RLock()
	skipped := a.precomputed.SkippedCount
	a.mu.RUnlock()
	a.logger.Info("sales data processing complete",
		"records", count,
		"skipped", skipped,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(count)/duration.Seconds()))

	return nil
}

func (a *Analytics) streamProcessCSV(ctx context.Context, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024) // 10MB buffer

	// Skip header
	if !scanner.Scan() {
		return fmt.Errorf("empty file")
	}

	global := newAggState()
	var transactions []models.Transaction
	var mu sync.Mutex
	recordCount := int64(0)
	skipped := int64(0)

	batch := make([]string, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := a.processBatch(ctx, batch, &mu, global, &transactions, &recordCount, &skipped)
		batch = batch[:0]
		return err
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch = append(batch, scanner.Text())

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	if recordCount == 0 {
		return fmt.Errorf("no valid records found")
	}

	precomputed := global.finalize()
	precomputed.Transactions = transactions
	precomputed.RecordCount = recordCount
	precomputed.SkippedCount = skipped
	precomputed.LastModified = time.Now()

	a.mu.Lock()
	a.precomputed = precomputed
	a.mu.Unlock()

	a.recordsProcessed.Store(recordCount)
	return nil
}

func (a *Analytics) processBatch(ctx context.Context, batch []string, mu *sync.Mutex,
	global *aggState, transactions *[]models.Transaction,
	recordCount, skipped *int64) error {

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	type processedTx struct {
		tx    models.Transaction
		valid bool
	}

	txChan := make(chan processedTx, len(batch))

	for _, line := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			record := strings.Split(line, ",")
			tx, err := models.ParseRecord(record)
			if err != nil {
				txChan <- processedTx{valid: false}
				return nil // Skip invalid records
			}

			txChan <- processedTx{tx: tx, valid: true}
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		close(txChan)
		return err
	}
	close(txChan)

	// Aggregate sequentially into a batch-local state, then merge once.
	local := newAggState()
	localTxs := make([]models.Transaction, 0, len(batch))
	localCount := int64(0)
	localSkipped := int64(0)

	for ptx := range txChan {
		if !ptx.valid {
			localSkipped++
			continue
		}
		local.add(ptx.tx)
		localTxs = append(localTxs, ptx.tx)
		localCount++
	}

	mu.Lock()
	global.merge(local)
	*transactions = append(*transactions, localTxs...)
	*recordCount += localCount
	*skipped += localSkipped
	mu.Unlock()

	return nil
}

// Query recomputes every aggregate over the subset of retained transactions
// the filter matches. With a zero filter it returns the precomputed data.
func (a *Analytics) Query(f models.Filter) *PrecomputedData {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if f.IsZero() {
		return a.precomputed
	}

	state := newAggState()
	matched := int64(0)
	for _, tx := range a.precomputed.Transactions {
		if f.Match(tx) {
			state.add(tx)
			matched++
		}
	}

	result := state.finalize()
	result.RecordCount = matched
	result.LastModified = a.precomputed.LastModified
	return result
}

// Cache management
func (a *Analytics) getCacheFilename(csvPath string) string {
	return fmt.Sprintf("%s/%s_%s.gob", a.cacheDir, strings.ReplaceAll(csvPath, "/", "_"), cacheVersion)
}

func (a *Analytics) saveToCache(csvPath string) error {
	if err := os.MkdirAll(a.cacheDir, 0755); err != nil {
		return err
	}

	filename := a.getCacheFilename(csvPath)
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	a.mu.RLock()
	defer a.mu.RUnlock()

	encoder := gob.NewEncoder(file)
	return encoder.Encode(a.precomputed)
}

func (a *Analytics) loadFromCache(csvPath string) (*PrecomputedData, error) {
	filename := a.getCacheFilename(csvPath)
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data PrecomputedData
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return nil, err
	}

	return &data, nil
}

// Fast query methods - O(1) lookups from precomputed data
func (a *Analytics) Summary() models.SummaryMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Summary
}

func (a *Analytics) RegionMetrics() []models.RegionMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Regions
}

func (a *Analytics) TopProducts(limit int) []models.ProductMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.precomputed.Products) <= limit {
		return a.precomputed.Products
	}
	return a.precomputed.Products[:limit]
}

func (a *Analytics) MonthlyRevenue() []models.MonthlyPoint {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Monthly
}

// MonthlyByRegion returns the per-region monthly series. With a region name
// it returns just that region's series, or nil when the region is unknown.
func (a *Analytics) MonthlyByRegion(region string) []models.RegionSeries {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if region == "" {
		return a.precomputed.MonthlyByRegion
	}
	for _, series := range a.precomputed.MonthlyByRegion {
		if strings.EqualFold(series.Region, region) {
			return []models.RegionSeries{series}
		}
	}
	return nil
}

func (a *Analytics) ChannelMetrics() []models.ChannelMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Channels
}

func (a *Analytics) SegmentMetrics() []models.SegmentMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Segments
}

func (a *Analytics) SalespersonLeaders(limit int) []models.SalespersonMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.precomputed.Salespeople) <= limit {
		return a.precomputed.Salespeople
	}
	return a.precomputed.Salespeople[:limit]
}

// ProductRegionMatrix returns revenue cells for the top-limit products across
// every region, ordered product-major.
func (a *Analytics) ProductRegionMatrix(limit int) []models.MatrixCell {
	a.mu.RLock()
	defer a.mu.RUnlock()

	top := a.precomputed.Products
	if len(top) > limit {
		top = top[:limit]
	}

	keep := make(map[string]int, len(top))
	for i, p := range top {
		keep[p.Product] = i
	}

	cells := make([]models.MatrixCell, 0, len(top)*8)
	for _, cell := range a.precomputed.Matrix {
		if _, ok := keep[cell.Product]; ok {
			cells = append(cells, cell)
		}
	}

	slices.SortFunc(cells, func(x, y models.MatrixCell) int {
		if keep[x.Product] != keep[y.Product] {
			return keep[x.Product] - keep[y.Product]
		}
		return strings.Compare(x.Region, y.Region)
	})
	return cells
}

// Transactions returns the retained dataset. Callers must not mutate it.
func (a *Analytics) Transactions() []models.Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Transactions
}

// Subscribe registers for reload notifications. The returned cancel func
// must be called when the subscriber goes away.
func (a *Analytics) Subscribe() (<-chan struct{}, func()) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	if a.subs == nil {
		a.subs = make(map[int]chan struct{})
	}
	id := a.nextID
	a.nextID++

	ch := make(chan struct{}, 1)
	a.subs[id] = ch

	cancel := func() {
		a.subMu.Lock()
		defer a.subMu.Unlock()
		delete(a.subs, id)
	}
	return ch, cancel
}

// NotifyReload wakes every subscriber. Slow subscribers keep their single
// buffered slot; extra notifications are dropped.
func (a *Analytics) NotifyReload() {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	for _, ch := range a.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"record_count":    a.precomputed.RecordCount,
		"skipped_records": a.precomputed.SkippedCount,
		"last_processed":  a.precomputed.LastModified,
		"load_duration":   time.Duration(a.loadDuration.Load()).String(),
		"cache_hit":       a.cacheHit.Load(),
		"regions":         len(a.precomputed.Regions),
		"products":        len(a.precomputed.Products),
		"months":          len(a.precomputed.Monthly),
		"channels":        len(a.precomputed.Channels),
		"segments":        len(a.precomputed.Segments),
		"salespeople":     len(a.precomputed.Salespeople),
	}
}
