// Package localstore persists the anonymous visitor's cart in a single
// named slot of the per-profile database. It is the only durable state the
// client owns; it never represents server truth and performs no network I/O.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shopfront.io/storefront/models"
)

// slotName is the fixed slot the cart lives under.
const slotName = "cart_items"

var _ Store = (*store)(nil)

type Store interface {
	// Load reads the persisted cart. It never fails: a missing slot,
	// unreadable row, or corrupt payload all yield an empty cart.
	Load(ctx context.Context) models.Cart

	// Save overwrites the slot with the full serialized cart.
	Save(ctx context.Context, cart models.Cart) error

	// Clear removes the slot entirely.
	Clear(ctx context.Context) error
}

type store struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewStore(db *sql.DB, logger *zap.Logger) Store {
	return &store{
		db:     db,
		logger: logger,
	}
}

func (s *store) Load(ctx context.Context) models.Cart {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_slots WHERE name = ?`, slotName).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Cart{}
	}
	if err != nil {
		s.logger.Warn("Failed to read local cart slot, treating as empty", zap.Error(err))
		return models.Cart{}
	}

	var lines []models.CartLine
	if err = json.Unmarshal(raw, &lines); err != nil {
		s.logger.Warn("Corrupt local cart slot, treating as empty", zap.Error(err))
		return models.Cart{}
	}

	cart := models.Cart{Lines: lines}
	cart.Normalize()
	return cart
}

func (s *store) Save(ctx context.Context, cart models.Cart) error {
	raw, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("serialize cart: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv_slots (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		slotName, raw)
	if err != nil {
		s.logger.Error("Failed to save local cart", zap.Error(err))
		return fmt.Errorf("save cart slot: %w", err)
	}

	return nil
}

func (s *store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_slots WHERE name = ?`, slotName); err != nil {
		s.logger.Error("Failed to clear local cart", zap.Error(err))
		return fmt.Errorf("clear cart slot: %w", err)
	}
	return nil
}
