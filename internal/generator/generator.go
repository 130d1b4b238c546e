// Package generator produces the synthetic sales dataset the rest of the
// app runs on. Output is fully deterministic for a fixed seed and date
// window: customers, salespeople, transaction ids, and every draw come from
// one seeded source.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

const (
	DefaultRecords     = 10000
	DefaultSeed        = 35487
	DefaultCustomers   = 500
	DefaultSalespeople = 25
	DefaultWindowDays  = 730
)

type Config struct {
	Records     int
	Seed        int64
	Customers   int
	Salespeople int
	WindowDays  int
	// End anchors the date window; transactions fall in the WindowDays
	// before it. Zero means today.
	End time.Time
}

func (c *Config) applyDefaults() {
	if c.Records <= 0 {
		c.Records = DefaultRecords
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Customers <= 0 {
		c.Customers = DefaultCustomers
	}
	if c.Salespeople <= 0 {
		c.Salespeople = DefaultSalespeople
	}
	if c.WindowDays <= 0 {
		c.WindowDays = DefaultWindowDays
	}
	if c.End.IsZero() {
		now := time.Now().UTC()
		c.End = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
}

type customer struct {
	id      string
	name    string
	email   string
	segment string
}

type salesperson struct {
	name      string
	tier      string
	perfMult  float64
	customers []customer
}

type Generator struct {
	cfg         Config
	rng         *rand.Rand
	segmentByID map[string]segmentSpec
	customers   []customer
	salespeople []salesperson
}

func New(cfg Config) *Generator {
	cfg.applyDefaults()

	g := &Generator{
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		segmentByID: make(map[string]segmentSpec, len(customerSegments)),
	}
	for _, s := range customerSegments {
		g.segmentByID[s.Name] = s
	}

	g.buildCustomerPool()
	g.buildSalespersonPool()
	return g
}

func (g *Generator) buildCustomerPool() {
	g.customers = make([]customer, 0, g.cfg.Customers)
	for i := 0; i < g.cfg.Customers; i++ {
		segment := g.pickSegment()
		name := g.pickName()
		g.customers = append(g.customers, customer{
			id:      g.newID(),
			name:    name,
			email:   g.emailFor(name),
			segment: segment.Name,
		})
	}
}

func (g *Generator) buildSalespersonPool() {
	total := g.cfg.Salespeople

	// Fixed tier shares; average absorbs the rounding remainder.
	counts := make([]int, len(salespersonTiers))
	assigned := 0
	for i, tier := range salespersonTiers {
		if tier.Name == TierAverage {
			continue
		}
		counts[i] = int(float64(total) * tier.Share)
		assigned += counts[i]
	}
	for i, tier := range salespersonTiers {
		if tier.Name == TierAverage {
			counts[i] = total - assigned
		}
	}

	g.salespeople = make([]salesperson, 0, total)
	for i, tier := range salespersonTiers {
		for n := 0; n < counts[i]; n++ {
			g.salespeople = append(g.salespeople, salesperson{
				name:     g.pickName() + tier.NameSuffix,
				tier:     tier.Name,
				perfMult: tier.PerformanceMult,
			})
		}
	}

	// Partition the customer pool evenly; the last salesperson takes the
	// remainder.
	perSeller := len(g.customers) / len(g.salespeople)
	for i := range g.salespeople {
		start := i * perSeller
		end := start + perSeller
		if i == len(g.salespeople)-1 {
			end = len(g.customers)
		}
		g.salespeople[i].customers = g.customers[start:end]
	}
}

// Generate produces the full transaction set: the configured number of
// primary records plus any bundle follow-ons, appended after the primaries.
func (g *Generator) Generate() []models.Transaction {
	start := g.cfg.End.AddDate(0, 0, -g.cfg.WindowDays)

	transactions := make([]models.Transaction, 0, g.cfg.Records)
	var bundles []models.Transaction

	for i := 0; i < g.cfg.Records; i++ {
		date := start.AddDate(0, 0, g.rng.Intn(g.cfg.WindowDays+1))

		seller := g.salespeople[g.rng.Intn(len(g.salespeople))]
		cust := seller.customers[g.rng.Intn(len(seller.customers))]
		segment := g.segmentByID[cust.segment]

		product := g.pickProduct()
		region := regions[g.rng.Intn(len(regions))]
		channel := g.pickChannel()

		seasonalMult := seasonalMultiplier(date, product)
		unitPrice := g.unitPrice(product, region, seasonalMult, segment.OrderValueMult)

		quantity := g.quantityFor(product.Name)
		switch {
		case cust.segment == "Enterprise" && g.rng.Float64() < 0.3:
			quantity *= 2 + g.rng.Intn(4) // bulk orders
		case cust.segment == "Education" && g.rng.Float64() < 0.4:
			quantity *= 2 + g.rng.Intn(2) // classroom sets
		}

		discount := g.discountFor(product.Name, channel, quantity)
		discount = adjustForTier(discount, seller.perfMult)

		tx := models.Transaction{
			TransactionID:   g.newID(),
			Date:            date,
			Product:         product.Name,
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: discount,
			TotalAmount:     totalAmount(quantity, unitPrice, discount),
			CustomerID:      cust.id,
			CustomerName:    cust.name,
			CustomerEmail:   cust.email,
			CustomerSegment: cust.segment,
			Region:          region,
			SalesChannel:    channel,
			Salesperson:     seller.name,
			SalespersonTier: seller.tier,
		}
		transactions = append(transactions, tx)

		if g.shouldBundle(product.Name, segment) {
			bundles = append(bundles, g.bundleFor(tx, segment, seasonalMult))
		}
	}

	return append(transactions, bundles...)
}

// bundleFor creates the follow-on purchase: same customer, date, channel,
// and salesperson, but a companion product with its own pricing and a
// sweetened discount.
func (g *Generator) bundleFor(parent models.Transaction, segment segmentSpec, seasonalMult float64) models.Transaction {
	companions := productBundles[parent.Product]
	name := companions[g.rng.Intn(len(companions))]
	product := productByName(name)

	tx := parent
	tx.TransactionID = g.newID()
	tx.Product = product.Name
	tx.Quantity = g.quantityFor(product.Name)
	tx.UnitPrice = g.unitPrice(product, parent.Region, seasonalMult, segment.OrderValueMult)

	discount := g.discountFor(product.Name, parent.SalesChannel, tx.Quantity)
	tx.DiscountPercent = round2(min(discount*1.2, 100))
	tx.TotalAmount = totalAmount(tx.Quantity, tx.UnitPrice, tx.DiscountPercent)
	return tx
}

func (g *Generator) unitPrice(product productSpec, region string, seasonalMult, segmentMult float64) float64 {
	base := product.PriceMin + g.rng.Float64()*(product.PriceMax-product.PriceMin)
	price := base * seasonalMult * regionalMultiplier(region, product.Name) * segmentMult

	return decimal.NewFromFloat(price).Round(2).InexactFloat64()
}

// totalAmount computes quantity x unit price less the discount, in decimal
// space so cents come out exact.
func totalAmount(quantity int, unitPrice, discountPercent float64) float64 {
	subtotal := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
	discount := subtotal.Mul(decimal.NewFromFloat(discountPercent)).Div(decimal.NewFromInt(100))
	return subtotal.Sub(discount).Round(2).InexactFloat64()
}

func seasonalMultiplier(date time.Time, product productSpec) float64 {
	factor := product.SeasonalFactor
	switch date.Month() {
	case time.November, time.December: // holiday season
		return factor * 1.5
	case time.August, time.September: // back to school
		return factor * 1.2
	default:
		return factor
	}
}

func regionalMultiplier(region, product string) float64 {
	factor := regionalFactors[region]
	if techProducts[product] {
		return (factor.EconomicStrength + factor.TechAdoption) / 2
	}
	return factor.EconomicStrength
}

func (g *Generator) quantityFor(product string) int {
	switch {
	case computerProducts[product]:
		return g.weightedInt([]int{1, 2, 3}, []float64{0.8, 0.15, 0.05})
	case peripheralProducts[product]:
		return g.weightedInt([]int{1, 2, 3, 4}, []float64{0.7, 0.2, 0.08, 0.02})
	default: // accessories move in multiples
		return g.weightedInt([]int{1, 2, 3, 4, 5, 6}, []float64{0.4, 0.3, 0.15, 0.08, 0.05, 0.02})
	}
}

func (g *Generator) discountFor(product, channel string, quantity int) float64 {
	var base float64
	switch channel {
	case "Partner":
		base = g.uniform(5, 15)
	case "Direct":
		base = g.uniform(8, 20)
	case "Online":
		base = g.uniform(0, 10)
	default: // Retail
		base = g.uniform(0, 8)
	}

	if quantity >= 5 {
		base += g.uniform(3, 8)
	} else if quantity >= 3 {
		base += g.uniform(1, 5)
	}

	// High-value items get discounted less often than accessories.
	gate := 0.6
	if highValueProducts[product] {
		gate = 0.3
	}
	if g.rng.Float64() >= gate {
		return 0
	}
	return round2(base)
}

func adjustForTier(discount, perfMult float64) float64 {
	switch {
	case perfMult > 1.0: // strong sellers hold the line on price
		discount *= 0.8
	case perfMult < 1.0:
		discount *= 1.3
	}
	return round2(min(discount, 100))
}

func (g *Generator) shouldBundle(product string, segment segmentSpec) bool {
	if _, ok := productBundles[product]; !ok {
		return false
	}
	return g.rng.Float64() < segment.BundleProbability
}

func (g *Generator) pickProduct() productSpec {
	total := 0.0
	for _, p := range productCatalog {
		total += p.Weight
	}
	target := g.rng.Float64() * total
	for _, p := range productCatalog {
		target -= p.Weight
		if target < 0 {
			return p
		}
	}
	return productCatalog[len(productCatalog)-1]
}

func (g *Generator) pickChannel() string {
	target := g.rng.Float64()
	for _, c := range salesChannels {
		target -= c.Weight
		if target < 0 {
			return c.Name
		}
	}
	return salesChannels[len(salesChannels)-1].Name
}

func (g *Generator) pickSegment() segmentSpec {
	target := g.rng.Float64()
	for _, s := range customerSegments {
		target -= s.Weight
		if target < 0 {
			return s
		}
	}
	return customerSegments[len(customerSegments)-1]
}

func (g *Generator) weightedInt(values []int, weights []float64) int {
	target := g.rng.Float64()
	for i, w := range weights {
		target -= w
		if target < 0 {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Generator) pickName() string {
	first := firstNames[g.rng.Intn(len(firstNames))]
	last := lastNames[g.rng.Intn(len(lastNames))]
	return first + " " + last
}

func (g *Generator) emailFor(name string) string {
	parts := strings.Fields(name)
	local := strings.ToLower(strings.Join(parts, "."))
	domain := emailDomains[g.rng.Intn(len(emailDomains))]
	return fmt.Sprintf("%s@%s", local, domain)
}

// newID draws a v4 UUID from the seeded source so ids reproduce with the
// seed.
func (g *Generator) newID() string {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		// The seeded source never fails to read.
		panic(err)
	}
	return id.String()
}

func productByName(name string) productSpec {
	for _, p := range productCatalog {
		if p.Name == name {
			return p
		}
	}
	return productSpec{Name: name, PriceMin: 10, PriceMax: 100, SeasonalFactor: 1.0}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
