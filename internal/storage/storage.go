// Package storage is the persistence bridge: it mirrors the entity store to
// a durable key-value table on every change and rehydrates it at startup.
// The layout is two JSON-serialized arrays (tasks, users) and one scalar
// (most recent session user ID) under well-known keys, each written in full
// on every change and read in full at startup.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taskflow-hq/taskflow-api/internal/config"
	"github.com/taskflow-hq/taskflow-api/internal/constants"
	"github.com/taskflow-hq/taskflow-api/internal/models"
	"github.com/taskflow-hq/taskflow-api/internal/store"
)

// Record is one well-known key and its JSON value.
type Record struct {
	Key   string `gorm:"primaryKey;type:varchar(64)"`
	Value string `gorm:"type:text;not null"`
}

func (Record) TableName() string {
	return "app_state"
}

// Store reads and writes the durable state layout.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database, runs the migration for the
// state table, and returns the bridge.
func Open(cfg *config.Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBPath)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		dialector = mysql.Open(dsn)
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db)
}

// New wraps an existing connection (used for testing).
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate state table: %w", err)
	}
	return &Store{db: db}, nil
}

// LoadState rehydrates the entity store. Missing keys yield empty
// collections, so a fresh database starts clean.
func (s *Store) LoadState() (store.State, error) {
	state := store.State{
		Tasks: []models.Task{},
		Users: []models.User{},
	}

	if err := s.loadKey(constants.StateKeyTasks, &state.Tasks); err != nil {
		return store.State{}, err
	}
	if err := s.loadKey(constants.StateKeyUsers, &state.Users); err != nil {
		return store.State{}, err
	}
	return state, nil
}

// SaveState writes both collections in full.
func (s *Store) SaveState(state store.State) error {
	if err := s.saveKey(constants.StateKeyTasks, state.Tasks); err != nil {
		return err
	}
	return s.saveKey(constants.StateKeyUsers, state.Users)
}

// SessionUserID returns the most recently signed-in user ID, or empty if
// nobody has signed in.
func (s *Store) SessionUserID() (string, error) {
	var rec Record
	err := s.db.First(&rec, "key = ?", constants.StateKeySession).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session pointer: %w", err)
	}
	return rec.Value, nil
}

// SaveSessionUserID records the session pointer. An empty ID clears it.
func (s *Store) SaveSessionUserID(id string) error {
	return s.upsert(Record{Key: constants.StateKeySession, Value: id})
}

func (s *Store) loadKey(key string, dest any) error {
	var rec Record
	err := s.db.First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(rec.Value), dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) saveKey(key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.upsert(Record{Key: key, Value: string(encoded)})
}

func (s *Store) upsert(rec Record) error {
	err := s.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", rec.Key, err)
	}
	return nil
}
