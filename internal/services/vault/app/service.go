// Package app coordinates vault operations: authorization, per-record
// locking, and the transactional boundary around domain state and ledger
// movements.
package app

import (
	"fmt"
	"time"

	"github.com/ANISH-SR/StreamVault/internal/services/vault/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Caller identifies the invoking party. Program is set when the call
// arrives through a delegated program context and must then match the
// record's stored control pair.
type Caller struct {
	Program string
	Account string
}

// Service exposes sprint and escrow operations over vault storage.
type Service struct {
	store  storage.Store
	clock  func() time.Time
	tracer trace.Tracer
	locks  *keyedLocks
}

// NewService creates a vault service backed by the provided store.
func NewService(store storage.Store) *Service {
	return &Service{
		store:  store,
		clock:  time.Now,
		tracer: otel.Tracer("streamvault/vault"),
		locks:  newKeyedLocks(),
	}
}

func (s *Service) ready() error {
	if s == nil || s.store == nil {
		return fmt.Errorf("vault store is not configured")
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.clock != nil {
		return s.clock().UTC()
	}
	return time.Now().UTC()
}
