package generator

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"sales-dashboard/internal/models"
)

// WriteCSV writes the dataset with the canonical header, creating parent
// directories as needed.
func WriteCSV(path string, transactions []models.Transaction) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(models.CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range transactions {
		if err := w.Write(tx.Record()); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return file.Close()
}
