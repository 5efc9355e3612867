package passive

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/kc1awv/Plugin-Collections/lib/database/sqlite"
)

// Setting is the GORM model for the passive_settings table.
type Setting struct {
	GroupID   string    `gorm:"column:group_id;primaryKey;type:text"`
	Enabled   bool      `gorm:"column:enabled;not null"`
	UpdatedBy string    `gorm:"column:updated_by;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for GORM.
func (Setting) TableName() string {
	return "passive_settings"
}

// Store holds per-group switches with an in-memory cache in front of the table.
type Store struct {
	db    *gorm.DB
	mu    sync.RWMutex
	cache map[string]bool
}

// Open opens the SQLite file at dbPath and migrates the settings table.
func Open(dbPath string) (*Store, error) {
	db, err := sqlite.Open(dbPath, &Setting{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: make(map[string]bool)}, nil
}

// Enabled reports whether expansion is on for groupID.
func (s *Store) Enabled(groupID string) (bool, error) {
	s.mu.RLock()
	v, ok := s.cache[groupID]
	s.mu.RUnlock()
	if ok {
		return v, nil
	}
	var row Setting
	err := s.db.Where("group_id = ?", groupID).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		v = true
	case err != nil:
		return false, err
	default:
		v = row.Enabled
	}
	s.mu.Lock()
	s.cache[groupID] = v
	s.mu.Unlock()
	return v, nil
}

// Set switches expansion for groupID and records who did it.
func (s *Store) Set(groupID string, enabled bool, by string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := Setting{GroupID: groupID, Enabled: enabled, UpdatedBy: by, UpdatedAt: time.Now()}
	if err := s.db.Save(&row).Error; err != nil {
		return err
	}
	s.cache[groupID] = enabled
	return nil
}
