package state

import "internwatch/internal/model"

// Ensure NopStore implements model.StateStore.
var _ model.StateStore = (*NopStore)(nil)

// NopStore is a no-op store used in check mode. It loads an empty set and
// never persists, so every fetched posting appears new and nothing is
// written. The engine's dry-run flag keeps the empty load from triggering
// bootstrap priming.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Load() (map[string]bool, error)   { return make(map[string]bool), nil }
func (s *NopStore) Commit(ids map[string]bool) error { return nil }
func (s *NopStore) Close() error                     { return nil }
