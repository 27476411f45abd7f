package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/engine"
)

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry(time.Hour)

	s := r.Create()
	require.NotEmpty(t, s.ID)

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry(time.Hour)

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryUpdate(t *testing.T) {
	r := NewRegistry(time.Hour)
	s := r.Create()

	entries := []domain.JournalEntry{{AccountNum: "706000"}}
	analysis := &engine.Analysis{Entries: entries}

	require.NoError(t, r.Update(s.ID, "FEC2022.txt", entries, analysis))

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"FEC2022.txt"}, got.Files)
	assert.Len(t, got.Entries, 1)
	assert.Same(t, analysis, got.Analysis)

	assert.ErrorIs(t, r.Update("nope", "", nil, nil), ErrNotFound)
}

func TestRegistryGetReturnsSnapshot(t *testing.T) {
	r := NewRegistry(time.Hour)
	s := r.Create()

	before, err := r.Get(s.ID)
	require.NoError(t, err)

	entries := []domain.JournalEntry{{AccountNum: "706000"}}
	require.NoError(t, r.Update(s.ID, "FEC2022.txt", entries, &engine.Analysis{Entries: entries}))

	// The snapshot taken before the update is unchanged.
	assert.Empty(t, before.Entries)
	assert.Empty(t, before.Files)

	// Mutating a snapshot's file list never leaks into the registry.
	after, err := r.Get(s.ID)
	require.NoError(t, err)
	require.Len(t, after.Files, 1)
	after.Files[0] = "mutated.txt"

	stored, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"FEC2022.txt"}, stored.Files)
}

func TestRegistryConcurrentUpdateAndGet(t *testing.T) {
	r := NewRegistry(time.Hour)
	s := r.Create()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			entries := []domain.JournalEntry{{AccountNum: "706000"}}
			_ = r.Update(s.ID, "", entries, &engine.Analysis{Entries: entries})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			got, err := r.Get(s.ID)
			if err != nil {
				continue
			}
			_ = len(got.Entries)
			if got.Analysis != nil {
				_ = len(got.Analysis.Entries)
			}
		}
	}()

	wg.Wait()
}

func TestRegistryDelete(t *testing.T) {
	r := NewRegistry(time.Hour)
	s := r.Create()

	r.Delete(s.ID)
	_, err := r.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryEvictsExpired(t *testing.T) {
	r := NewRegistry(time.Hour)

	now := time.Now()
	r.now = func() time.Time { return now }

	stale := r.Create()
	r.now = func() time.Time { return now.Add(2 * time.Hour) }
	fresh := r.Create()

	evicted := r.evictExpired()

	assert.Equal(t, 1, evicted)
	_, err := r.Get(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestRegistryUpdateRefreshesTTL(t *testing.T) {
	r := NewRegistry(time.Hour)

	now := time.Now()
	r.now = func() time.Time { return now }
	s := r.Create()

	// Touch the session just before it would expire.
	r.now = func() time.Time { return now.Add(50 * time.Minute) }
	require.NoError(t, r.Update(s.ID, "", nil, nil))

	r.now = func() time.Time { return now.Add(90 * time.Minute) }
	assert.Equal(t, 0, r.evictExpired(), "updated session survives the original deadline")
}
