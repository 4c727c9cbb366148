package validation

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Store is the append-only log of validation records. No update or delete is
// exposed; moderation would be a separate privileged operation outside this
// engine. The interface exists so the orchestrator and the aggregation
// engines can be exercised against an in-memory store in tests.
type Store interface {
	// Append persists a new record and fills in its ID.
	Append(ctx context.Context, record *Record) error

	// ByBusiness returns all records for a business, optionally filtered to
	// one channel, oldest first.
	ByBusiness(ctx context.Context, businessID string, channel *ContactChannel) ([]Record, error)

	// RecentByBusiness returns the newest records for a business.
	RecentByBusiness(ctx context.Context, businessID string, channel *ContactChannel, limit int) ([]Record, error)

	// ByVoter returns all records authored by one voter.
	ByVoter(ctx context.Context, voterIdentity string) ([]Record, error)

	// CountByVoter counts the records authored by one voter.
	CountByVoter(ctx context.Context, voterIdentity string) (int64, error)

	// Since returns every record submitted after t. Used to rebuild the
	// cooldown ledger after a Redis restart.
	Since(ctx context.Context, t time.Time) ([]Record, error)

	// VoterTotals returns the record count per voter identity. Used to
	// rebuild the reputation ranking.
	VoterTotals(ctx context.Context) (map[string]int64, error)
}

// --- GORM-backed store ---

type gormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a GORM handle in the Store contract.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Append(ctx context.Context, record *Record) error {
	comment, err := NormalizeComment(record.Comment)
	if err != nil {
		return err
	}
	record.Comment = comment
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *gormStore) ByBusiness(ctx context.Context, businessID string, channel *ContactChannel) ([]Record, error) {
	var records []Record
	query := s.db.WithContext(ctx).Where("business_id = ?", businessID)
	if channel != nil {
		query = query.Where("channel = ?", *channel)
	}
	err := query.Order("id asc").Find(&records).Error
	return records, err
}

func (s *gormStore) RecentByBusiness(ctx context.Context, businessID string, channel *ContactChannel, limit int) ([]Record, error) {
	var records []Record
	query := s.db.WithContext(ctx).Where("business_id = ?", businessID)
	if channel != nil {
		query = query.Where("channel = ?", *channel)
	}
	err := query.Order("id desc").Limit(limit).Find(&records).Error
	return records, err
}

func (s *gormStore) ByVoter(ctx context.Context, voterIdentity string) ([]Record, error) {
	var records []Record
	err := s.db.WithContext(ctx).Where("voter_identity = ?", voterIdentity).Order("id asc").Find(&records).Error
	return records, err
}

func (s *gormStore) CountByVoter(ctx context.Context, voterIdentity string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Record{}).Where("voter_identity = ?", voterIdentity).Count(&count).Error
	return count, err
}

func (s *gormStore) Since(ctx context.Context, t time.Time) ([]Record, error) {
	var records []Record
	err := s.db.WithContext(ctx).Where("submitted_at > ?", t).Order("id asc").Find(&records).Error
	return records, err
}

func (s *gormStore) VoterTotals(ctx context.Context) (map[string]int64, error) {
	type row struct {
		VoterIdentity string
		Total         int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&Record{}).
		Select("voter_identity, count(*) as total").
		Group("voter_identity").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int64, len(rows))
	for _, r := range rows {
		totals[r.VoterIdentity] = r.Total
	}
	return totals, nil
}

// --- In-memory store ---

// MemoryStore is a Store kept entirely in memory. It backs the test suites
// and mirrors the append-only semantics of the GORM store.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	nextID  uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Append(_ context.Context, record *Record) error {
	comment, err := NormalizeComment(record.Comment)
	if err != nil {
		return err
	}
	record.Comment = comment

	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = s.nextID
	s.nextID++
	s.records = append(s.records, *record)
	return nil
}

func (s *MemoryStore) ByBusiness(_ context.Context, businessID string, channel *ContactChannel) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, r := range s.records {
		if r.BusinessID != businessID {
			continue
		}
		if channel != nil && r.Channel != *channel {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) RecentByBusiness(ctx context.Context, businessID string, channel *ContactChannel, limit int) ([]Record, error) {
	all, err := s.ByBusiness(ctx, businessID, channel)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) ByVoter(_ context.Context, voterIdentity string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, r := range s.records {
		if r.VoterIdentity == voterIdentity {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) CountByVoter(_ context.Context, voterIdentity string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, r := range s.records {
		if r.VoterIdentity == voterIdentity {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Since(_ context.Context, t time.Time) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, r := range s.records {
		if r.SubmittedAt.After(t) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) VoterTotals(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := make(map[string]int64)
	for _, r := range s.records {
		totals[r.VoterIdentity]++
	}
	return totals, nil
}

// Len reports the number of stored records. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
