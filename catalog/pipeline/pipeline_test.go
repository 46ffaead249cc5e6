package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"sfcatalog/catalog"
	"sfcatalog/lib/testutil"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu         sync.Mutex
	candidates []Candidate
	records    map[string]catalog.ObjectRecord
	failing    map[string]error
	fetched    []string
	inflight   int
	peak       int
}

func (s *fakeSource) ListObjects(ctx context.Context) ([]Candidate, error) {
	return s.candidates, nil
}

func (s *fakeSource) FetchObject(ctx context.Context, cand Candidate) (catalog.ObjectRecord, error) {
	s.mu.Lock()
	s.inflight++
	if s.inflight > s.peak {
		s.peak = s.inflight
	}
	s.fetched = append(s.fetched, cand.Name)
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()

	if err, ok := s.failing[cand.Name]; ok {
		return catalog.ObjectRecord{}, err
	}
	if record, ok := s.records[cand.Name]; ok {
		return record, nil
	}
	return catalog.ObjectRecord{
		Name:   cand.Name,
		Module: cand.Cloud,
		Properties: map[string]catalog.FieldDescriptor{
			"Name": {Type: catalog.TypeString},
		},
	}, nil
}

func candidatesNamed(cloud string, names ...string) []Candidate {
	out := make([]Candidate, len(names))
	for i, name := range names {
		out[i] = Candidate{Name: name, Cloud: cloud}
	}
	return out
}

func fastOptions() Options {
	return Options{ChunkSize: 2, ChunkDelay: time.Millisecond, CheckpointEvery: 2}
}

func TestRunFetchesAndIndexesEverything(t *testing.T) {
	cat, cleanup := testutil.SetupCatalog(t, "pipeline/run")
	defer cleanup()

	src := &fakeSource{
		candidates: candidatesNamed("Core Salesforce", "Account", "Contact", "Lead", "Case", "Asset"),
	}

	summary, err := Run(context.Background(), cat, src, catalog.DefaultFilter(), fastOptions())
	require.NoError(t, err)
	require.Equal(t, 5, summary.Planned)
	require.Equal(t, 5, summary.Fetched)
	require.Equal(t, 0, summary.Errored)

	// the chunk size bounds concurrent fetches
	require.LessOrEqual(t, src.peak, 2)

	names, err := cat.Store.List()
	require.NoError(t, err)
	require.Len(t, names, 5)
	require.Len(t, cat.Index().Objects, 5)

	// a completed run leaves no checkpoint behind
	cp, err := cat.ReadCheckpoint()
	require.NoError(t, err)
	require.Nil(t, cp)
}

func TestRunAppliesFilter(t *testing.T) {
	cat, cleanup := testutil.SetupCatalog(t, "pipeline/filter")
	defer cleanup()

	src := &fakeSource{
		candidates: candidatesNamed("Core Salesforce", "Account", "AccountHistory", "AccountShare", "Custom__c"),
	}

	summary, err := Run(context.Background(), cat, src, catalog.DefaultFilter(), fastOptions())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Planned)
	require.Equal(t, 3, summary.Rejected)

	names, err := cat.Store.List()
	require.NoError(t, err)
	require.Equal(t, []string{"Account"}, names)
}

func TestRunSkipsFailedObjects(t *testing.T) {
	cat, cleanup := testutil.SetupCatalog(t, "pipeline/skip")
	defer cleanup()

	src := &fakeSource{
		candidates: candidatesNamed("Core Salesforce", "Account", "Broken", "Contact"),
		failing:    map[string]error{"Broken": fmt.Errorf("503 Service Unavailable")},
	}

	summary, err := Run(context.Background(), cat, src, catalog.DefaultFilter(), fastOptions())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Fetched)
	require.Equal(t, 1, summary.Errored)

	// the failed object left no partial write anywhere
	record, err := cat.Store.ReadObject("Broken")
	require.NoError(t, err)
	require.Nil(t, record)
	require.NotContains(t, cat.Index().Objects, "Broken")
}

func TestRunAbortsOnFatalError(t *testing.T) {
	cat, cleanup := testutil.SetupCatalog(t, "pipeline/fatal")
	defer cleanup()

	authErr := Fatal(errors.New("session revoked"))
	src := &fakeSource{
		candidates: candidatesNamed("Core Salesforce", "Account", "Contact"),
		failing:    map[string]error{"Account": authErr, "Contact": authErr},
	}

	_, err := Run(context.Background(), cat, src, catalog.DefaultFilter(), fastOptions())
	require.Error(t, err)
	require.True(t, IsFatal(err))
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	cat, cleanup := testutil.SetupCatalog(t, "pipeline/resume")
	defer cleanup()

	names := []string{"Account", "Asset", "Case", "Contact", "Lead", "Order"}

	// simulate an interrupted run that processed the first four objects
	err := cat.WriteCheckpoint(catalog.Checkpoint{
		LastProcessedIndex:  3,
		LastProcessedObject: "Contact",
		TotalObjects:        len(names),
		StartedAt:           time.Now().UTC(),
		LastUpdatedAt:       time.Now().UTC(),
		ProcessedCount:      4,
	})
	require.NoError(t, err)

	src := &fakeSource{candidates: candidatesNamed("Core Salesforce", names...)}
	opts := fastOptions()
	opts.Resume = true
	summary, err := Run(context.Background(), cat, src, catalog.DefaultFilter(), opts)
	require.NoError(t, err)

	// only the remainder of the plan was fetched
	require.ElementsMatch(t, []string{"Lead", "Order"}, src.fetched)
	require.Equal(t, 2, summary.Fetched)
}

func TestRunIgnoresStaleCheckpoint(t *testing.T) {
	cat, cleanup := testutil.SetupCatalog(t, "pipeline/stale-checkpoint")
	defer cleanup()

	// the checkpoint is from a differently sized plan, so it cannot be
	// trusted
	err := cat.WriteCheckpoint(catalog.Checkpoint{
		LastProcessedIndex: 9,
		TotalObjects:       42,
	})
	require.NoError(t, err)

	src := &fakeSource{candidates: candidatesNamed("Core Salesforce", "Account", "Contact")}
	opts := fastOptions()
	opts.Resume = true
	summary, err := Run(context.Background(), cat, src, catalog.DefaultFilter(), opts)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Fetched)
}

func TestRunIsRerunSafe(t *testing.T) {
	cat, cleanup := testutil.SetupCatalog(t, "pipeline/rerun")
	defer cleanup()

	src := &fakeSource{
		candidates: candidatesNamed("Core Salesforce", "Account", "Contact"),
	}

	_, err := Run(context.Background(), cat, src, catalog.DefaultFilter(), fastOptions())
	require.NoError(t, err)
	firstIndex := cat.Index().Objects["Account"]

	_, err = Run(context.Background(), cat, src, catalog.DefaultFilter(), fastOptions())
	require.NoError(t, err)
	require.Equal(t, firstIndex, cat.Index().Objects["Account"])
}
