package config

import "fmt"

// Weights are the relative importance of each sub-score. They are normalized
// to sum to 1 before use, so only their ratios matter.
type Weights struct {
	Time    float64 `yaml:"time" json:"time"`
	Service float64 `yaml:"service" json:"service"`
	Infra   float64 `yaml:"infra" json:"infra"`
	Org     float64 `yaml:"org" json:"org"`
}

// DefaultWeights returns the built-in weight defaults.
func DefaultWeights() Weights {
	return Weights{Time: 0.35, Service: 0.30, Infra: 0.20, Org: 0.15}
}

// Normalized returns weights scaled so they sum to 1. Zero-sum weights are
// returned unchanged; Validate rejects them first.
func (w Weights) Normalized() Weights {
	sum := w.Time + w.Service + w.Infra + w.Org
	if sum == 0 {
		return w
	}
	return Weights{
		Time:    w.Time / sum,
		Service: w.Service / sum,
		Infra:   w.Infra / sum,
		Org:     w.Org / sum,
	}
}

// Validate checks each weight is in [0,1] and at least one is positive.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"time": w.Time, "service": w.Service, "infra": w.Infra, "org": w.Org,
	} {
		if v < 0 || v > 1 {
			return &Error{Field: "weights." + name, Message: fmt.Sprintf("must be in [0,1], got %v", v)}
		}
	}
	if w.Time+w.Service+w.Infra+w.Org == 0 {
		return &Error{Field: "weights", Message: "at least one weight must be positive"}
	}
	return nil
}

// Thresholds tune time decay and ranking cut-off.
type Thresholds struct {
	// TimeDecayHours is the distance at which the time sub-score reaches 0.
	TimeDecayHours float64 `yaml:"time_decay_hours" json:"time_decay_hours"`
	// MinScore excludes candidates below it from the ranking.
	MinScore float64 `yaml:"min_score_to_show" json:"min_score_to_show"`
}

// DefaultThresholds returns the built-in threshold defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{TimeDecayHours: 4, MinScore: 0}
}

// Validate checks threshold ranges.
func (t Thresholds) Validate() error {
	if t.TimeDecayHours < 1 || t.TimeDecayHours > 48 {
		return &Error{Field: "thresholds.time_decay_hours", Message: fmt.Sprintf("must be in [1,48], got %v", t.TimeDecayHours)}
	}
	if t.MinScore < 0 || t.MinScore > 100 {
		return &Error{Field: "thresholds.min_score_to_show", Message: fmt.Sprintf("must be in [0,100], got %v", t.MinScore)}
	}
	return nil
}

// Penalties are multiplicative score reductions, each in [0,1].
type Penalties struct {
	NoLiveIntervals     float64 `yaml:"no_live_intervals" json:"no_live_intervals"`
	NoHosts             float64 `yaml:"no_hosts" json:"no_hosts"`
	NoServices          float64 `yaml:"no_services" json:"no_services"`
	GenericChange       float64 `yaml:"generic_change" json:"generic_change"`
	LongDurationWeek    float64 `yaml:"long_duration_week" json:"long_duration_week"`
	LongDurationMonth   float64 `yaml:"long_duration_month" json:"long_duration_month"`
	LongDurationQuarter float64 `yaml:"long_duration_quarter" json:"long_duration_quarter"`
}

// DefaultPenalties returns the built-in penalty defaults.
func DefaultPenalties() Penalties {
	return Penalties{
		NoLiveIntervals:     0.8,
		NoHosts:             0.95,
		NoServices:          0.90,
		GenericChange:       0.5,
		LongDurationWeek:    0.8,
		LongDurationMonth:   0.6,
		LongDurationQuarter: 0.4,
	}
}

// Validate checks every penalty is in [0,1].
func (p Penalties) Validate() error {
	for name, v := range map[string]float64{
		"no_live_intervals":     p.NoLiveIntervals,
		"no_hosts":              p.NoHosts,
		"no_services":           p.NoServices,
		"generic_change":        p.GenericChange,
		"long_duration_week":    p.LongDurationWeek,
		"long_duration_month":   p.LongDurationMonth,
		"long_duration_quarter": p.LongDurationQuarter,
	} {
		if v < 0 || v > 1 {
			return &Error{Field: "penalties." + name, Message: fmt.Sprintf("must be in [0,1], got %v", v)}
		}
	}
	return nil
}

// Bonuses are multiplicative score boosts for temporal proximity, each in [1,3].
type Bonuses struct {
	ProximityExact float64 `yaml:"proximity_exact" json:"proximity_exact"` // <= 30 min
	Proximity1h    float64 `yaml:"proximity_1h" json:"proximity_1h"`
	Proximity2h    float64 `yaml:"proximity_2h" json:"proximity_2h"`
	Proximity4h    float64 `yaml:"proximity_4h" json:"proximity_4h"`
}

// DefaultBonuses returns the built-in bonus defaults.
func DefaultBonuses() Bonuses {
	return Bonuses{ProximityExact: 1.5, Proximity1h: 1.3, Proximity2h: 1.2, Proximity4h: 1.1}
}

// Validate checks every bonus is in [1,3].
func (b Bonuses) Validate() error {
	for name, v := range map[string]float64{
		"proximity_exact": b.ProximityExact,
		"proximity_1h":    b.Proximity1h,
		"proximity_2h":    b.Proximity2h,
		"proximity_4h":    b.Proximity4h,
	} {
		if v < 1 || v > 3 {
			return &Error{Field: "bonuses." + name, Message: fmt.Sprintf("must be in [1,3], got %v", v)}
		}
	}
	return nil
}

// Scoring is the full scorer configuration. It is passed by value into the
// scorer so that a runtime reload never mutates an in-flight job.
type Scoring struct {
	Weights    Weights    `yaml:"weights" json:"weights"`
	Thresholds Thresholds `yaml:"thresholds" json:"thresholds"`
	Penalties  Penalties  `yaml:"penalties" json:"penalties"`
	Bonuses    Bonuses    `yaml:"bonuses" json:"bonuses"`

	// ServiceSynonyms maps a canonical service name to its aliases.
	ServiceSynonyms map[string][]string `yaml:"service_synonyms" json:"service_synonyms"`
	// RelatedGroups maps an ecosystem name to the canonical services in it.
	RelatedGroups map[string][]string `yaml:"related_groups" json:"related_groups"`
}

// DefaultScoring returns the complete built-in scoring configuration.
func DefaultScoring() Scoring {
	return Scoring{
		Weights:         DefaultWeights(),
		Thresholds:      DefaultThresholds(),
		Penalties:       DefaultPenalties(),
		Bonuses:         DefaultBonuses(),
		ServiceSynonyms: defaultServiceSynonyms(),
		RelatedGroups:   defaultRelatedGroups(),
	}
}

// Validate checks every range constraint of the scoring configuration.
func (s Scoring) Validate() error {
	if err := s.Weights.Validate(); err != nil {
		return err
	}
	if err := s.Thresholds.Validate(); err != nil {
		return err
	}
	if err := s.Penalties.Validate(); err != nil {
		return err
	}
	return s.Bonuses.Validate()
}
