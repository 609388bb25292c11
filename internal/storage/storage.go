// Package storage persists visits, trial usage counters, and the
// furniture catalog in a SQLite database.
package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Visit records a single request against the public API.
type Visit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
}

// TrialUsage counts completed generations per client.
type TrialUsage struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ClientID  string    `gorm:"uniqueIndex" json:"client_id"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CatalogItem is a furniture piece available for recommendation.
type CatalogItem struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Style       string    `json:"style"`
	ImagePath   string    `json:"-"`
	ImageURL    string    `json:"image_url"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store wraps the database handle.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at path and migrates the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&Visit{}, &TrialUsage{}, &CatalogItem{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// LogVisit records a request. Failures are logged, not surfaced, so a
// broken visits table never blocks an API call.
func (s *Store) LogVisit(ip, userAgent, path, method string) {
	v := Visit{IP: ip, UserAgent: userAgent, Path: path, Method: method}
	if err := s.db.Create(&v).Error; err != nil {
		slog.Warn("Failed to log visit", "path", path, "error", err)
	}
}

// ListVisits returns the most recent visits, newest first.
func (s *Store) ListVisits(limit int) ([]Visit, error) {
	var visits []Visit
	err := s.db.Order("created_at DESC").Limit(limit).Find(&visits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

// UsageCount returns how many generations the client has completed.
func (s *Store) UsageCount(clientID string) (int, error) {
	var usage TrialUsage
	err := s.db.Where("client_id = ?", clientID).First(&usage).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	return usage.Count, nil
}

// IncrementUsage bumps the client's generation counter.
func (s *Store) IncrementUsage(clientID string) error {
	var usage TrialUsage
	err := s.db.Where("client_id = ?", clientID).First(&usage).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		usage = TrialUsage{ClientID: clientID, Count: 1}
		if err := s.db.Create(&usage).Error; err != nil {
			return fmt.Errorf("failed to create usage record: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to read usage: %w", err)
	}

	err = s.db.Model(&usage).Update("count", usage.Count+1).Error
	if err != nil {
		return fmt.Errorf("failed to update usage: %w", err)
	}
	return nil
}

// CountVisits returns the total number of recorded visits.
func (s *Store) CountVisits() (int64, error) {
	var n int64
	if err := s.db.Model(&Visit{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}
	return n, nil
}

// ListUsage returns all trial usage counters.
func (s *Store) ListUsage() ([]TrialUsage, error) {
	var usage []TrialUsage
	if err := s.db.Find(&usage).Error; err != nil {
		return nil, fmt.Errorf("failed to list usage: %w", err)
	}
	return usage, nil
}

// ListCatalog returns all catalog items, newest first.
func (s *Store) ListCatalog() ([]CatalogItem, error) {
	var items []CatalogItem
	err := s.db.Order("created_at DESC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	return items, nil
}

// AddCatalogItem stores a new catalog item and returns it with its
// generated ID.
func (s *Store) AddCatalogItem(item CatalogItem) (CatalogItem, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := s.db.Create(&item).Error; err != nil {
		return CatalogItem{}, fmt.Errorf("failed to add catalog item: %w", err)
	}
	return item, nil
}

// GetCatalogItem fetches a single catalog item by ID.
func (s *Store) GetCatalogItem(id string) (CatalogItem, error) {
	var item CatalogItem
	err := s.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		return CatalogItem{}, fmt.Errorf("failed to get catalog item: %w", err)
	}
	return item, nil
}

// DeleteCatalogItem removes a catalog item by ID.
func (s *Store) DeleteCatalogItem(id string) error {
	result := s.db.Where("id = ?", id).Delete(&CatalogItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete catalog item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("catalog item %s not found", id)
	}
	return nil
}
