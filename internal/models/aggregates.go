package models

type SummaryMetrics struct {
	TotalRevenue    float64 `json:"total_revenue"`
	Transactions    int     `json:"transactions"`
	AvgTransaction  float64 `json:"avg_transaction"`
	UniqueCustomers int     `json:"unique_customers"`
	UnitsSold       int     `json:"units_sold"`
	AvgDiscount     float64 `json:"avg_discount"`
	FirstDate       string  `json:"first_date,omitempty"`
	LastDate        string  `json:"last_date,omitempty"`
}

type RegionMetrics struct {
	Region          string  `json:"region"`
	Revenue         float64 `json:"total_revenue"`
	Transactions    int     `json:"transactions"`
	UnitsSold       int     `json:"units_sold"`
	UniqueCustomers int     `json:"unique_customers"`
	AvgDiscount     float64 `json:"avg_discount"`
}

type ProductMetrics struct {
	Product        string  `json:"product"`
	Revenue        float64 `json:"total_revenue"`
	UnitsSold      int     `json:"units_sold"`
	Transactions   int     `json:"transactions"`
	AvgUnitPrice   float64 `json:"avg_unit_price"`
	RevenuePerUnit float64 `json:"revenue_per_unit"`
	AvgDiscount    float64 `json:"avg_discount"`
}

type MonthlyPoint struct {
	Month        string  `json:"month"`
	Revenue      float64 `json:"total_revenue"`
	Transactions int     `json:"transactions"`
}

type RegionSeries struct {
	Region string         `json:"region"`
	Points []MonthlyPoint `json:"points"`
}

type ChannelMetrics struct {
	Channel      string  `json:"sales_channel"`
	Revenue      float64 `json:"total_revenue"`
	Transactions int     `json:"transactions"`
	RevenueShare float64 `json:"revenue_share"`
	AvgDiscount  float64 `json:"avg_discount"`
}

type SegmentMetrics struct {
	Segment         string  `json:"customer_segment"`
	Revenue         float64 `json:"total_revenue"`
	Transactions    int     `json:"transactions"`
	UniqueCustomers int     `json:"unique_customers"`
	AvgOrderValue   float64 `json:"avg_order_value"`
}

type SalespersonMetrics struct {
	Salesperson string  `json:"salesperson"`
	Tier        string  `json:"salesperson_tier"`
	Revenue     float64 `json:"total_revenue"`
	Deals       int     `json:"deals"`
	UnitsSold   int     `json:"units_sold"`
	AvgDiscount float64 `json:"avg_discount"`
}

type MatrixCell struct {
	Product string  `json:"product"`
	Region  string  `json:"region"`
	Revenue float64 `json:"total_revenue"`
}
