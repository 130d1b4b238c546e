package services

import (
	"math"
	"slices"
	"strings"
	"time"

	"sales-dashboard/internal/models"
)

// aggState accumulates every dashboard aggregate in one pass. Batch workers
// build local states that merge into a global one under the caller's lock.
type aggState struct {
	regions       map[string]*regionAcc
	products      map[string]*productAcc
	monthly       map[string]*monthAcc
	regionMonthly map[string]*monthAcc // "region|YYYY-MM"
	channels      map[string]*channelAcc
	segments      map[string]*segmentAcc
	sellers       map[string]*sellerAcc
	matrix        map[string]float64 // "product|region"
	customers     map[string]struct{}

	revenue     float64
	units       int
	discountSum float64
	count       int
	minDate     time.Time
	maxDate     time.Time
}

type regionAcc struct {
	revenue     float64
	txns        int
	units       int
	discountSum float64
	customers   map[string]struct{}
}

type productAcc struct {
	revenue     float64
	units       int
	txns        int
	priceSum    float64
	discountSum float64
}

type monthAcc struct {
	revenue float64
	txns    int
}

type channelAcc struct {
	revenue     float64
	txns        int
	discountSum float64
}

type segmentAcc struct {
	revenue   float64
	txns      int
	customers map[string]struct{}
}

type sellerAcc struct {
	tier        string
	revenue     float64
	deals       int
	units       int
	discountSum float64
}

func newAggState() *aggState {
	return &aggState{
		regions:       make(map[string]*regionAcc),
		products:      make(map[string]*productAcc),
		monthly:       make(map[string]*monthAcc),
		regionMonthly: make(map[string]*monthAcc),
		channels:      make(map[string]*channelAcc),
		segments:      make(map[string]*segmentAcc),
		sellers:       make(map[string]*sellerAcc),
		matrix:        make(map[string]float64),
		customers:     make(map[string]struct{}),
	}
}

func (s *aggState) add(tx models.Transaction) {
	s.revenue += tx.TotalAmount
	s.units += tx.Quantity
	s.discountSum += tx.DiscountPercent
	s.count++
	if tx.CustomerID != "" {
		s.customers[tx.CustomerID] = struct{}{}
	}
	if s.minDate.IsZero() || tx.Date.Before(s.minDate) {
		s.minDate = tx.Date
	}
	if tx.Date.After(s.maxDate) {
		s.maxDate = tx.Date
	}

	region := s.regions[tx.Region]
	if region == nil {
		region = &regionAcc{customers: make(map[string]struct{})}
		s.regions[tx.Region] = region
	}
	region.revenue += tx.TotalAmount
	region.txns++
	region.units += tx.Quantity
	region.discountSum += tx.DiscountPercent
	if tx.CustomerID != "" {
		region.customers[tx.CustomerID] = struct{}{}
	}

	product := s.products[tx.Product]
	if product == nil {
		product = &productAcc{}
		s.products[tx.Product] = product
	}
	product.revenue += tx.TotalAmount
	product.units += tx.Quantity
	product.txns++
	product.priceSum += tx.UnitPrice
	product.discountSum += tx.DiscountPercent

	month := tx.MonthKey()
	if s.monthly[month] == nil {
		s.monthly[month] = &monthAcc{}
	}
	s.monthly[month].revenue += tx.TotalAmount
	s.monthly[month].txns++

	rmKey := tx.Region + "|" + month
	if s.regionMonthly[rmKey] == nil {
		s.regionMonthly[rmKey] = &monthAcc{}
	}
	s.regionMonthly[rmKey].revenue += tx.TotalAmount
	s.regionMonthly[rmKey].txns++

	channel := s.channels[tx.SalesChannel]
	if channel == nil {
		channel = &channelAcc{}
		s.channels[tx.SalesChannel] = channel
	}
	channel.revenue += tx.TotalAmount
	channel.txns++
	channel.discountSum += tx.DiscountPercent

	segment := s.segments[tx.CustomerSegment]
	if segment == nil {
		segment = &segmentAcc{customers: make(map[string]struct{})}
		s.segments[tx.CustomerSegment] = segment
	}
	segment.revenue += tx.TotalAmount
	segment.txns++
	if tx.CustomerID != "" {
		segment.customers[tx.CustomerID] = struct{}{}
	}

	seller := s.sellers[tx.Salesperson]
	if seller == nil {
		seller = &sellerAcc{tier: tx.SalespersonTier}
		s.sellers[tx.Salesperson] = seller
	}
	seller.revenue += tx.TotalAmount
	seller.deals++
	seller.units += tx.Quantity
	seller.discountSum += tx.DiscountPercent

	s.matrix[tx.Product+"|"+tx.Region] += tx.TotalAmount
}

func (s *aggState) merge(o *aggState) {
	s.revenue += o.revenue
	s.units += o.units
	s.discountSum += o.discountSum
	s.count += o.count
	for id := range o.customers {
		s.customers[id] = struct{}{}
	}
	if s.minDate.IsZero() || (!o.minDate.IsZero() && o.minDate.Before(s.minDate)) {
		s.minDate = o.minDate
	}
	if o.maxDate.After(s.maxDate) {
		s.maxDate = o.maxDate
	}

	for k, v := range o.regions {
		dst := s.regions[k]
		if dst == nil {
			dst = &regionAcc{customers: make(map[string]struct{})}
			s.regions[k] = dst
		}
		dst.revenue += v.revenue
		dst.txns += v.txns
		dst.units += v.units
		dst.discountSum += v.discountSum
		for id := range v.customers {
			dst.customers[id] = struct{}{}
		}
	}

	for k, v := range o.products {
		dst := s.products[k]
		if dst == nil {
			dst = &productAcc{}
			s.products[k] = dst
		}
		dst.revenue += v.revenue
		dst.units += v.units
		dst.txns += v.txns
		dst.priceSum += v.priceSum
		dst.discountSum += v.discountSum
	}

	for k, v := range o.monthly {
		if s.monthly[k] == nil {
			s.monthly[k] = &monthAcc{}
		}
		s.monthly[k].revenue += v.revenue
		s.monthly[k].txns += v.txns
	}

	for k, v := range o.regionMonthly {
		if s.regionMonthly[k] == nil {
			s.regionMonthly[k] = &monthAcc{}
		}
		s.regionMonthly[k].revenue += v.revenue
		s.regionMonthly[k].txns += v.txns
	}

	for k, v := range o.channels {
		dst := s.channels[k]
		if dst == nil {
			dst = &channelAcc{}
			s.channels[k] = dst
		}
		dst.revenue += v.revenue
		dst.txns += v.txns
		dst.discountSum += v.discountSum
	}

	for k, v := range o.segments {
		dst := s.segments[k]
		if dst == nil {
			dst = &segmentAcc{customers: make(map[string]struct{})}
			s.segments[k] = dst
		}
		dst.revenue += v.revenue
		dst.txns += v.txns
		for id := range v.customers {
			dst.customers[id] = struct{}{}
		}
	}

	for k, v := range o.sellers {
		dst := s.sellers[k]
		if dst == nil {
			dst = &sellerAcc{tier: v.tier}
			s.sellers[k] = dst
		}
		dst.revenue += v.revenue
		dst.deals += v.deals
		dst.units += v.units
		dst.discountSum += v.discountSum
	}

	for k, v := range o.matrix {
		s.matrix[k] += v
	}
}

func (s *aggState) finalize() *PrecomputedData {
	pre := &PrecomputedData{
		Summary:         s.summaryMetrics(),
		Regions:         s.regionMetrics(),
		Products:        s.productMetrics(),
		Monthly:         s.monthlyPoints(),
		MonthlyByRegion: s.regionSeries(),
		Channels:        s.channelMetrics(),
		Segments:        s.segmentMetrics(),
		Salespeople:     s.salespersonMetrics(),
		Matrix:          s.matrixCells(),
	}
	pre.RecordCount = int64(s.count)
	return pre
}

func (s *aggState) summaryMetrics() models.SummaryMetrics {
	m := models.SummaryMetrics{
		TotalRevenue:    round2(s.revenue),
		Transactions:    s.count,
		UniqueCustomers: len(s.customers),
		UnitsSold:       s.units,
	}
	if s.count > 0 {
		m.AvgTransaction = round2(s.revenue / float64(s.count))
		m.AvgDiscount = round2(s.discountSum / float64(s.count))
	}
	if !s.minDate.IsZero() {
		m.FirstDate = s.minDate.Format(models.DateFormat)
		m.LastDate = s.maxDate.Format(models.DateFormat)
	}
	return m
}

func (s *aggState) regionMetrics() []models.RegionMetrics {
	result := make([]models.RegionMetrics, 0, len(s.regions))
	for name, acc := range s.regions {
		m := models.RegionMetrics{
			Region:          name,
			Revenue:         round2(acc.revenue),
			Transactions:    acc.txns,
			UnitsSold:       acc.units,
			UniqueCustomers: len(acc.customers),
		}
		if acc.txns > 0 {
			m.AvgDiscount = round2(acc.discountSum / float64(acc.txns))
		}
		result = append(result, m)
	}
	sortByRevenue(result, func(m models.RegionMetrics) float64 { return m.Revenue })
	return result
}

func (s *aggState) productMetrics() []models.ProductMetrics {
	result := make([]models.ProductMetrics, 0, len(s.products))
	for name, acc := range s.products {
		m := models.ProductMetrics{
			Product:      name,
			Revenue:      round2(acc.revenue),
			UnitsSold:    acc.units,
			Transactions: acc.txns,
		}
		if acc.txns > 0 {
			m.AvgUnitPrice = round2(acc.priceSum / float64(acc.txns))
			m.AvgDiscount = round2(acc.discountSum / float64(acc.txns))
		}
		if acc.units > 0 {
			m.RevenuePerUnit = round2(acc.revenue / float64(acc.units))
		}
		result = append(result, m)
	}
	sortByRevenue(result, func(m models.ProductMetrics) float64 { return m.Revenue })
	return result
}

func (s *aggState) monthlyPoints() []models.MonthlyPoint {
	result := make([]models.MonthlyPoint, 0, len(s.monthly))
	for month, acc := range s.monthly {
		result = append(result, models.MonthlyPoint{
			Month:        month,
			Revenue:      round2(acc.revenue),
			Transactions: acc.txns,
		})
	}
	slices.SortFunc(result, func(x, y models.MonthlyPoint) int {
		return strings.Compare(x.Month, y.Month)
	})
	return result
}

func (s *aggState) regionSeries() []models.RegionSeries {
	byRegion := make(map[string][]models.MonthlyPoint)
	for key, acc := range s.regionMonthly {
		region, month, ok := strings.Cut(key, "|")
		if !ok {
			continue
		}
		byRegion[region] = append(byRegion[region], models.MonthlyPoint{
			Month:        month,
			Revenue:      round2(acc.revenue),
			Transactions: acc.txns,
		})
	}

	result := make([]models.RegionSeries, 0, len(byRegion))
	for region, points := range byRegion {
		slices.SortFunc(points, func(x, y models.MonthlyPoint) int {
			return strings.Compare(x.Month, y.Month)
		})
		result = append(result, models.RegionSeries{Region: region, Points: points})
	}
	slices.SortFunc(result, func(x, y models.RegionSeries) int {
		return strings.Compare(x.Region, y.Region)
	})
	return result
}

func (s *aggState) channelMetrics() []models.ChannelMetrics {
	result := make([]models.ChannelMetrics, 0, len(s.channels))
	for name, acc := range s.channels {
		m := models.ChannelMetrics{
			Channel:      name,
			Revenue:      round2(acc.revenue),
			Transactions: acc.txns,
		}
		if acc.txns > 0 {
			m.AvgDiscount = round2(acc.discountSum / float64(acc.txns))
		}
		if s.revenue > 0 {
			m.RevenueShare = round2(acc.revenue / s.revenue * 100)
		}
		result = append(result, m)
	}
	sortByRevenue(result, func(m models.ChannelMetrics) float64 { return m.Revenue })
	return result
}

func (s *aggState) segmentMetrics() []models.SegmentMetrics {
	result := make([]models.SegmentMetrics, 0, len(s.segments))
	for name, acc := range s.segments {
		m := models.SegmentMetrics{
			Segment:         name,
			Revenue:         round2(acc.revenue),
			Transactions:    acc.txns,
			UniqueCustomers: len(acc.customers),
		}
		if acc.txns > 0 {
			m.AvgOrderValue = round2(acc.revenue / float64(acc.txns))
		}
		result = append(result, m)
	}
	sortByRevenue(result, func(m models.SegmentMetrics) float64 { return m.Revenue })
	return result
}

func (s *aggState) salespersonMetrics() []models.SalespersonMetrics {
	result := make([]models.SalespersonMetrics, 0, len(s.sellers))
	for name, acc := range s.sellers {
		m := models.SalespersonMetrics{
			Salesperson: name,
			Tier:        acc.tier,
			Revenue:     round2(acc.revenue),
			Deals:       acc.deals,
			UnitsSold:   acc.units,
		}
		if acc.deals > 0 {
			m.AvgDiscount = round2(acc.discountSum / float64(acc.deals))
		}
		result = append(result, m)
	}
	sortByRevenue(result, func(m models.SalespersonMetrics) float64 { return m.Revenue })
	return result
}

func (s *aggState) matrixCells() []models.MatrixCell {
	result := make([]models.MatrixCell, 0, len(s.matrix))
	for key, revenue := range s.matrix {
		product, region, ok := strings.Cut(key, "|")
		if !ok {
			continue
		}
		result = append(result, models.MatrixCell{
			Product: product,
			Region:  region,
			Revenue: round2(revenue),
		})
	}
	slices.SortFunc(result, func(x, y models.MatrixCell) int {
		if c := strings.Compare(x.Product, y.Product); c != 0 {
			return c
		}
		return strings.Compare(x.Region, y.Region)
	})
	return result
}

// computeAll aggregates an in-memory slice in one pass (SetData path).
func computeAll(data []models.Transaction) *PrecomputedData {
	state := newAggState()
	for _, tx := range data {
		state.add(tx)
	}
	pre := state.finalize()
	pre.Transactions = data
	pre.RecordCount = int64(len(data))
	return pre
}

func sortByRevenue[T any](items []T, revenue func(T) float64) {
	slices.SortFunc(items, func(x, y T) int {
		rx, ry := revenue(x), revenue(y)
		if rx > ry {
			return -1
		}
		if rx < ry {
			return 1
		}
		return 0
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
