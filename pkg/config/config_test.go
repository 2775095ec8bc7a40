package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestWeightsNormalized(t *testing.T) {
	w := Weights{Time: 0.35, Service: 0.30, Infra: 0.20, Org: 0.15}
	n := w.Normalized()
	assert.InDelta(t, 1.0, n.Time+n.Service+n.Infra+n.Org, 1e-9)
	assert.InDelta(t, 0.35, n.Time, 1e-9)

	// Already-normalized weights survive unchanged.
	half := Weights{Time: 0.5, Service: 0.5}
	n = half.Normalized()
	assert.InDelta(t, 0.5, n.Time, 1e-9)
	assert.InDelta(t, 0.5, n.Service, 1e-9)
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.Error(t, Weights{Time: 1.5}.Validate())
	assert.Error(t, Weights{Time: -0.1}.Validate())
	assert.Error(t, Weights{}.Validate()) // all zero
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{TimeDecayHours: 0.5}.Validate())
	assert.Error(t, Thresholds{TimeDecayHours: 49}.Validate())
	assert.Error(t, Thresholds{TimeDecayHours: 4, MinScore: 101}.Validate())
}

func TestPenaltiesValidate(t *testing.T) {
	assert.NoError(t, DefaultPenalties().Validate())

	bad := DefaultPenalties()
	bad.GenericChange = 1.5
	assert.Error(t, bad.Validate())
}

func TestBonusesValidate(t *testing.T) {
	assert.NoError(t, DefaultBonuses().Validate())

	low := DefaultBonuses()
	low.Proximity4h = 0.9
	assert.Error(t, low.Validate())

	high := DefaultBonuses()
	high.ProximityExact = 3.5
	assert.Error(t, high.Validate())
}

func TestConfigErrorMessage(t *testing.T) {
	err := &Error{Field: "weights.time", Message: "must be in [0,1]"}
	assert.Contains(t, err.Error(), "weights.time")
}

func TestDefaultTablesContent(t *testing.T) {
	tables := DefaultTables()
	assert.Contains(t, tables.Technologies, "kubernetes")
	assert.Contains(t, tables.Technologies, "postgresql")
	assert.Contains(t, tables.HostBlacklist, "https")
	assert.Contains(t, tables.IgnoreTags, "urgent")

	synonyms := defaultServiceSynonyms()
	assert.Contains(t, synonyms, "s3 object storage")
	assert.Contains(t, synonyms["s3 object storage"], "cloudian")

	groups := defaultRelatedGroups()
	assert.Contains(t, groups["ionos-cloud"], "compute")
}

func TestCustomFieldsDefaults(t *testing.T) {
	fields := DefaultCustomFields()
	assert.Equal(t, "customfield_10303", fields.StartDateTime)
	assert.Equal(t, "customfield_10304", fields.EndDateTime)
	assert.Equal(t, "customfield_15000", fields.ResponsibleEntity)
}
