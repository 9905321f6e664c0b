package store

import (
	"time"

	"github.com/amishk599/uxradar/internal/model"
)

var _ model.ListingStore = (*NopStore)(nil)

// NopStore is used in dry-run mode. It never marks listings as seen, so every
// listing appears new on each run.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(string) (bool, error) { return false, nil }
func (s *NopStore) MarkSeen(string) error        { return nil }
func (s *NopStore) Cleanup(time.Duration) error  { return nil }
func (s *NopStore) IsEmpty() (bool, error)       { return true, nil }

