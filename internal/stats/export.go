// Package stats exports usage data (visits and trial counters) to
// Parquet or JSONL files for offline analysis.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/roomstager-app/roomstager/internal/storage"
)

// VisitRecord is one flattened visit row.
type VisitRecord struct {
	IP        string `json:"ip" parquet:"ip"`
	UserAgent string `json:"user_agent" parquet:"user_agent"`
	Path      string `json:"path" parquet:"path"`
	Method    string `json:"method" parquet:"method"`
	CreatedAt string `json:"created_at" parquet:"created_at"`
}

// UsageRecord is one flattened trial usage row.
type UsageRecord struct {
	ClientID string `json:"client_id" parquet:"client_id"`
	Count    int64  `json:"count" parquet:"count"`
}

// Summary holds headline usage numbers.
type Summary struct {
	Visits       int64
	TrialClients int
	Generations  int
	CatalogItems int
}

// Summarize aggregates counts across the visits log, trial usage
// counters, and the catalog.
func Summarize(store *storage.Store) (Summary, error) {
	var sum Summary

	visits, err := store.CountVisits()
	if err != nil {
		return Summary{}, err
	}
	sum.Visits = visits

	usage, err := store.ListUsage()
	if err != nil {
		return Summary{}, err
	}
	sum.TrialClients = len(usage)
	for _, u := range usage {
		sum.Generations += u.Count
	}

	items, err := store.ListCatalog()
	if err != nil {
		return Summary{}, err
	}
	sum.CatalogItems = len(items)

	return sum, nil
}

// Export writes visits and usage counters next to each other under
// dir, in the format the extension of name implies (.parquet or
// .jsonl).
func Export(store *storage.Store, dir, format string) error {
	visits, err := store.ListVisits(1 << 20)
	if err != nil {
		return err
	}
	usage, err := store.ListUsage()
	if err != nil {
		return err
	}

	visitRecords := make([]VisitRecord, 0, len(visits))
	for _, v := range visits {
		visitRecords = append(visitRecords, VisitRecord{
			IP:        v.IP,
			UserAgent: v.UserAgent,
			Path:      v.Path,
			Method:    v.Method,
			CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	usageRecords := make([]UsageRecord, 0, len(usage))
	for _, u := range usage {
		usageRecords = append(usageRecords, UsageRecord{
			ClientID: u.ClientID,
			Count:    int64(u.Count),
		})
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	switch strings.ToLower(format) {
	case "parquet":
		if err := writeParquet(filepath.Join(dir, "visits.parquet"), visitRecords); err != nil {
			return err
		}
		return writeParquet(filepath.Join(dir, "usage.parquet"), usageRecords)
	case "jsonl":
		if err := writeJSONL(filepath.Join(dir, "visits.jsonl"), visitRecords); err != nil {
			return err
		}
		return writeJSONL(filepath.Join(dir, "usage.jsonl"), usageRecords)
	default:
		return fmt.Errorf("unsupported format: %s (supported: parquet, jsonl)", format)
	}
}

func writeParquet[T any](path string, records []T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(records); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func writeJSONL[T any](path string, records []T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to write JSONL row: %w", err)
		}
	}
	return nil
}
