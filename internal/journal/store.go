package journal

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"ai-memories/internal/apperr"
	"ai-memories/internal/storage"
)

// Store is the append-only entry log persisted as one whole record.
//
// There is no locking across the read-modify-write in Append: two
// concurrent appends are last-write-wins and one of them may be lost.
// The application has a single writer.
type Store struct {
	records storage.Records
	logger  *zap.Logger
	now     func() time.Time
}

type StoreOption func(*Store)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(records storage.Records, logger *zap.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{records: records, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns entries in creation order. An absent, unreadable or
// corrupt record yields an empty log rather than an error.
func (s *Store) ListAll(ctx context.Context) []Entry {
	entries, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("entries unreadable, treating as empty", zap.Error(err))
		return []Entry{}
	}
	return entries
}

// load reads the log for a read-modify-write. Absent and corrupt records
// are empty; any other read failure is returned.
func (s *Store) load(ctx context.Context) ([]Entry, error) {
	data, err := s.records.Read(ctx, storage.RecordEntries)
	if errors.Is(err, storage.ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		// TODO: surface a data-integrity warning to the user instead of only logging; the next Append overwrites the corrupt log.
		s.logger.Warn("entries record corrupt, treating as empty", zap.Error(err))
		return []Entry{}, nil
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Append creates an entry with a fresh id and timestamp and persists the
// whole log. The entry is returned only once the write succeeded.
func (s *Store) Append(ctx context.Context, content, aiResponse string, tags []Tag) (Entry, error) {
	if strings.TrimSpace(content) == "" {
		return Entry{}, apperr.Validation("append entry", "content is required")
	}
	entries, err := s.load(ctx)
	if err != nil {
		return Entry{}, apperr.Persistence("read entries", err)
	}

	now := s.now().UTC()
	id := now.UnixMilli()
	if n := len(entries); n > 0 && entries[n-1].ID >= id {
		id = entries[n-1].ID + 1
	}
	if tags == nil {
		tags = []Tag{}
	}
	entry := Entry{
		ID:         id,
		Content:    content,
		AIResponse: aiResponse,
		Tags:       tags,
		CreatedAt:  now,
	}

	data, err := json.MarshalIndent(append(entries, entry), "", "  ")
	if err != nil {
		return Entry{}, apperr.Persistence("encode entries", err)
	}
	if err := s.records.Write(ctx, storage.RecordEntries, data); err != nil {
		return Entry{}, apperr.Persistence("write entries", err)
	}
	s.logger.Debug("entry appended", zap.Int64("id", entry.ID), zap.Int("tags", len(tags)))
	return entry, nil
}
