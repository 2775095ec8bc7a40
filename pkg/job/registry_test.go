package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/correlator/pkg/models"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	update := registry.Register("job-1", cancel)

	update(Progress{Done: 3, Total: 10, Phase: models.PhaseExtracting})

	progress, ok := registry.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, 3, progress.Done)
	assert.Equal(t, 10, progress.Total)
	assert.Equal(t, models.PhaseExtracting, progress.Phase)

	_, ok = registry.Get("unknown")
	assert.False(t, ok)
}

func TestRegistryNonIncreasingDoneIsNoOp(t *testing.T) {
	registry := NewRegistry()
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	update := registry.Register("job-1", cancel)

	update(Progress{Done: 5, Total: 10, Phase: models.PhaseExtracting})
	update(Progress{Done: 3, Total: 10, Phase: models.PhaseExtracting})

	progress, _ := registry.Get("job-1")
	assert.Equal(t, 5, progress.Done)

	// a phase change resets the monotonicity guard
	update(Progress{Done: 0, Total: 10, Phase: models.PhaseScoring})
	progress, _ = registry.Get("job-1")
	assert.Equal(t, models.PhaseScoring, progress.Phase)
}

func TestRegistryCancel(t *testing.T) {
	registry := NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	registry.Register("job-1", cancel)

	assert.True(t, registry.Cancel("job-1"))
	assert.Error(t, ctx.Err())
	assert.False(t, registry.Cancel("unknown"))
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewRegistry()
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	registry.Register("job-1", cancel)

	registry.Unregister("job-1")

	_, ok := registry.Get("job-1")
	assert.False(t, ok)
	assert.False(t, registry.Cancel("job-1"))
}
