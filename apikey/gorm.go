package apikey

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/authware/authware/scope"
)

// KeyRow is the SQL representation of a key record. Keys are stored as
// SHA-256 digests; scopes are stored space-delimited.
type KeyRow struct {
	KeyHash   string `gorm:"primaryKey;column:key_hash"`
	Identity  string
	Label     string
	Scopes    string
	Revoked   bool
	ExpiresAt *time.Time
}

// TableName implements gorm's table naming convention override.
func (KeyRow) TableName() string { return "api_keys" }

// GormStore looks API keys up in a SQL database through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore builds a GormStore on the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the api_keys table. Intended for deployments that let
// the application own its schema.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&KeyRow{})
}

// Lookup fetches the record stored under the digest of key. A missing
// row maps to ErrNotFound; any other database error surfaces as-is.
func (s *GormStore) Lookup(ctx context.Context, key string) (*Record, error) {
	digest := sha256.Sum256([]byte(key))

	var row KeyRow
	err := s.db.WithContext(ctx).
		Where("key_hash = ?", hex.EncodeToString(digest[:])).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sql lookup: %w", err)
	}

	rec := &Record{
		Identity: row.Identity,
		Label:    row.Label,
		Scopes:   scope.ParseSet(row.Scopes).Slice(),
		Revoked:  row.Revoked,
	}
	if row.ExpiresAt != nil {
		rec.ExpiresAt = *row.ExpiresAt
	}

	return rec, nil
}
