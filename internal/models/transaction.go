package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the wire format for transaction dates in CSV files.
const DateFormat = "2006-01-02"

// CSVHeader is the canonical column order for the sales dataset. The
// generator writes it and every reader expects it.
var CSVHeader = []string{
	"transaction_id",
	"date",
	"product",
	"quantity",
	"unit_price",
	"discount_percent",
	"total_amount",
	"customer_id",
	"customer_name",
	"customer_email",
	"customer_segment",
	"region",
	"sales_channel",
	"salesperson",
	"salesperson_tier",
}

type Transaction struct {
	TransactionID   string
	Date            time.Time
	Product         string
	Quantity        int
	UnitPrice       float64
	DiscountPercent float64
	TotalAmount     float64
	CustomerID      string
	CustomerName    string
	CustomerEmail   string
	CustomerSegment string
	Region          string
	SalesChannel    string
	Salesperson     string
	SalespersonTier string
}

// MonthKey returns the YYYY-MM bucket the transaction falls into.
func (t Transaction) MonthKey() string {
	return t.Date.Format("2006-01")
}

// RevenuePerUnit is the realized price after discount.
func (t Transaction) RevenuePerUnit() float64 {
	if t.Quantity == 0 {
		return 0
	}
	return t.TotalAmount / float64(t.Quantity)
}

// ParseRecord decodes one CSV row into a Transaction, validating as it goes.
// Column order must match CSVHeader.
func ParseRecord(record []string) (Transaction, error) {
	if len(record) < len(CSVHeader) {
		return Transaction{}, fmt.Errorf("expected %d columns, got %d", len(CSVHeader), len(record))
	}

	id := strings.TrimSpace(record[0])
	if id == "" {
		return Transaction{}, fmt.Errorf("empty transaction_id")
	}

	date, err := time.Parse(DateFormat, strings.TrimSpace(record[1]))
	if err != nil {
		return Transaction{}, fmt.Errorf("parse date: %w", err)
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return Transaction{}, fmt.Errorf("parse quantity: %w", err)
	}
	if quantity < 1 {
		return Transaction{}, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}

	unitPrice, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
	if err != nil {
		return Transaction{}, fmt.Errorf("parse unit_price: %w", err)
	}
	if unitPrice < 0 {
		return Transaction{}, fmt.Errorf("unit_price must not be negative")
	}

	discount, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
	if err != nil {
		return Transaction{}, fmt.Errorf("parse discount_percent: %w", err)
	}
	if discount < 0 || discount > 100 {
		return Transaction{}, fmt.Errorf("discount_percent out of range: %g", discount)
	}

	totalAmount, err := strconv.ParseFloat(strings.TrimSpace(record[6]), 64)
	if err != nil {
		return Transaction{}, fmt.Errorf("parse total_amount: %w", err)
	}
	if totalAmount < 0 {
		return Transaction{}, fmt.Errorf("total_amount must not be negative")
	}

	return Transaction{
		TransactionID:   id,
		Date:            date,
		Product:         strings.TrimSpace(record[2]),
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: discount,
		TotalAmount:     totalAmount,
		CustomerID:      strings.TrimSpace(record[7]),
		CustomerName:    strings.TrimSpace(record[8]),
		CustomerEmail:   strings.TrimSpace(record[9]),
		CustomerSegment: strings.TrimSpace(record[10]),
		Region:          strings.TrimSpace(record[11]),
		SalesChannel:    strings.TrimSpace(record[12]),
		Salesperson:     strings.TrimSpace(record[13]),
		SalespersonTier: strings.TrimSpace(record[14]),
	}, nil
}

// Record encodes the transaction in CSVHeader column order.
func (t Transaction) Record() []string {
	return []string{
		t.TransactionID,
		t.Date.Format(DateFormat),
		t.Product,
		strconv.Itoa(t.Quantity),
		strconv.FormatFloat(t.UnitPrice, 'f', 2, 64),
		strconv.FormatFloat(t.DiscountPercent, 'f', 1, 64),
		strconv.FormatFloat(t.TotalAmount, 'f', 2, 64),
		t.CustomerID,
		t.CustomerName,
		t.CustomerEmail,
		t.CustomerSegment,
		t.Region,
		t.SalesChannel,
		t.Salesperson,
		t.SalespersonTier,
	}
}
