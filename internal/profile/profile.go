package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ai-memories/internal/apperr"
	"ai-memories/internal/storage"
)

// Well-known profile keys.
const (
	KeyNameAndLifeStage   = "nameAndLifeStage"
	KeyFoundationalMemory = "foundationalMemory"
	KeyLinguisticStyle    = "linguisticStyle"
	KeyOnboardingComplete = "onboardingComplete"
	KeyUpdatedAt          = "updatedAt"
)

// Profile is a free-form bag describing the user.
type Profile map[string]any

func (p Profile) Field(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (p Profile) NameAndLifeStage() string   { return p.Field(KeyNameAndLifeStage) }
func (p Profile) FoundationalMemory() string { return p.Field(KeyFoundationalMemory) }
func (p Profile) LinguisticStyle() string    { return p.Field(KeyLinguisticStyle) }

// OnboardingComplete accepts a boolean or the string "true".
func (p Profile) OnboardingComplete() bool {
	switch v := p[KeyOnboardingComplete].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// Store persists the profile as one record and updates it by bulk merge.
type Store struct {
	records storage.Records
	logger  *zap.Logger
	now     func() time.Time
}

func NewStore(records storage.Records, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{records: records, logger: logger, now: time.Now}
}

// Get returns the stored profile; absent, unreadable or malformed data
// yields an empty profile.
func (s *Store) Get(ctx context.Context) Profile {
	p, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("profile unreadable, treating as empty", zap.Error(err))
		return Profile{}
	}
	return p
}

func (s *Store) load(ctx context.Context) (Profile, error) {
	data, err := s.records.Read(ctx, storage.RecordProfile)
	if errors.Is(err, storage.ErrNotFound) {
		return Profile{}, nil
	}
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil || p == nil {
		s.logger.Warn("profile record malformed, treating as empty", zap.Error(err))
		return Profile{}, nil
	}
	return p, nil
}

// Merge overlays fields onto the stored profile, stamps updatedAt and
// persists the result. No field-level validation is done.
func (s *Store) Merge(ctx context.Context, fields map[string]any) (Profile, error) {
	p, err := s.load(ctx)
	if err != nil {
		return nil, apperr.Persistence("read profile", err)
	}
	for k, v := range fields {
		p[k] = v
	}
	p[KeyUpdatedAt] = s.now().UTC().Format(time.RFC3339Nano)

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, apperr.Persistence("encode profile", err)
	}
	if err := s.records.Write(ctx, storage.RecordProfile, data); err != nil {
		return nil, apperr.Persistence("write profile", err)
	}
	return p, nil
}
