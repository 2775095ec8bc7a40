package storage

import (
	"context"
	"errors"

	"github.com/codeready-toolchain/correlator/pkg/config"
)

// Config blob keys. Values written through the config endpoints override the
// startup defaults on subsequent reads; absent keys fall back to them.
const (
	keyWeights    = "weights"
	keyPenalties  = "penalties"
	keyBonuses    = "bonuses"
	keyThresholds = "thresholds"
	keyTopResults = "top_results"
	keySynonyms   = "service_synonyms"
	keyGroups     = "related_groups"
)

// Settings reads and writes the tunable scoring configuration, falling back
// to the supplied defaults when a key was never stored.
type Settings struct {
	store    *Store
	defaults *config.Config
}

// NewSettings creates a settings accessor.
func NewSettings(store *Store, defaults *config.Config) *Settings {
	return &Settings{store: store, defaults: defaults}
}

// Scoring assembles the current scoring configuration from stored overrides
// and defaults. The result is a value: reloading later never mutates a
// scoring config already handed to a job.
func (s *Settings) Scoring(ctx context.Context) (config.Scoring, error) {
	scoring := s.defaults.Scoring

	if err := s.load(ctx, keyWeights, &scoring.Weights); err != nil {
		return scoring, err
	}
	if err := s.load(ctx, keyPenalties, &scoring.Penalties); err != nil {
		return scoring, err
	}
	if err := s.load(ctx, keyBonuses, &scoring.Bonuses); err != nil {
		return scoring, err
	}
	if err := s.load(ctx, keyThresholds, &scoring.Thresholds); err != nil {
		return scoring, err
	}

	synonyms := map[string][]string{}
	switch err := s.store.GetConfigValue(ctx, keySynonyms, &synonyms); {
	case err == nil:
		scoring.ServiceSynonyms = synonyms
	case !errors.Is(err, ErrNotFound):
		return scoring, err
	}

	groups := map[string][]string{}
	switch err := s.store.GetConfigValue(ctx, keyGroups, &groups); {
	case err == nil:
		scoring.RelatedGroups = groups
	case !errors.Is(err, ErrNotFound):
		return scoring, err
	}

	return scoring, nil
}

// TopResults returns the stored ranking display size, or the default.
func (s *Settings) TopResults(ctx context.Context) int {
	var top int
	if err := s.store.GetConfigValue(ctx, keyTopResults, &top); err != nil || top == 0 {
		return s.defaults.TopResults
	}
	return top
}

// SetWeights persists new default weights.
func (s *Settings) SetWeights(ctx context.Context, w config.Weights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	return s.store.SetConfigValue(ctx, keyWeights, w)
}

// SetPenalties persists new penalties.
func (s *Settings) SetPenalties(ctx context.Context, p config.Penalties) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.store.SetConfigValue(ctx, keyPenalties, p)
}

// SetBonuses persists new bonuses.
func (s *Settings) SetBonuses(ctx context.Context, b config.Bonuses) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return s.store.SetConfigValue(ctx, keyBonuses, b)
}

// SetThresholds persists new thresholds.
func (s *Settings) SetThresholds(ctx context.Context, t config.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.store.SetConfigValue(ctx, keyThresholds, t)
}

// SetTopResults persists the ranking display size.
func (s *Settings) SetTopResults(ctx context.Context, top int) error {
	if top < config.MinTopResults || top > config.MaxTopResults {
		return &config.Error{Field: "top_results", Message: "out of range"}
	}
	return s.store.SetConfigValue(ctx, keyTopResults, top)
}

// SetServiceSynonyms replaces the synonym table.
func (s *Settings) SetServiceSynonyms(ctx context.Context, synonyms map[string][]string) error {
	return s.store.SetConfigValue(ctx, keySynonyms, synonyms)
}

// SetRelatedGroups replaces the ecosystem group table.
func (s *Settings) SetRelatedGroups(ctx context.Context, groups map[string][]string) error {
	return s.store.SetConfigValue(ctx, keyGroups, groups)
}

func (s *Settings) load(ctx context.Context, key string, out any) error {
	err := s.store.GetConfigValue(ctx, key, out)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
