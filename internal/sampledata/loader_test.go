package sampledata

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdoherty/fhir-admin/config"
	"github.com/jdoherty/fhir-admin/internal/dataset"
	"github.com/jdoherty/fhir-admin/internal/fhir"
	"github.com/jdoherty/fhir-admin/internal/store"
)

// memDocs is a thread-safe in-memory DocumentStore.
type memDocs struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

func newMemDocs() *memDocs {
	return &memDocs{docs: make(map[string]json.RawMessage)}
}

func (m *memDocs) key(bucket, scope, collection, id string) string {
	return fmt.Sprintf("%s/%s/%s/%s", bucket, scope, collection, id)
}

func (m *memDocs) Upsert(_ context.Context, bucket, scope, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[m.key(bucket, scope, collection, id)] = raw
	return nil
}

func (m *memDocs) Insert(ctx context.Context, bucket, scope, collection, id string, doc any) error {
	m.mu.Lock()
	_, exists := m.docs[m.key(bucket, scope, collection, id)]
	m.mu.Unlock()
	if exists {
		return store.ErrDocumentExists
	}
	return m.Upsert(ctx, bucket, scope, collection, id, doc)
}

func (m *memDocs) Get(_ context.Context, bucket, scope, collection, id string, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.docs[m.key(bucket, scope, collection, id)]
	if !ok {
		return store.ErrDocumentNotFound
	}
	return json.Unmarshal(raw, out)
}

func (m *memDocs) Exists(_ context.Context, bucket, scope, collection, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[m.key(bucket, scope, collection, id)]
	return ok, nil
}

func (m *memDocs) Query(context.Context, string) ([]json.RawMessage, error) {
	return nil, nil
}

type stubResolver struct {
	docs store.DocumentStore
	err  error
}

func (r *stubResolver) Resolve(string) (store.DocumentStore, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.docs, nil
}

// spyReporter records every snapshot it receives.
type spyReporter struct {
	mu        sync.Mutex
	snapshots []Progress
}

func (r *spyReporter) OnProgress(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, p)
}

func (r *spyReporter) all() []Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Progress, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

func writeArchive(t *testing.T, members map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, contents := range members {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return path
}

func newTestService(t *testing.T, archive string, maxConcurrency int) (*Service, *memDocs) {
	t.Helper()

	docs := newMemDocs()
	catalog := dataset.NewCatalog(map[string]config.DatasetConfig{
		"synthea": {Archive: archive, PrimaryResourceType: "Patient"},
	})
	svc := NewService(
		&stubResolver{docs: docs},
		catalog,
		fhir.NewBundleProcessor(),
		fhir.NewResourceProcessor(),
		nil,
		maxConcurrency,
	)
	return svc, docs
}

func TestLoadEndToEnd(t *testing.T) {
	archive := writeArchive(t, map[string]string{
		"bundle.json": `{
			"resourceType": "Bundle",
			"type": "transaction",
			"entry": [
				{"resource": {"resourceType": "Patient", "id": "p1"}},
				{"resource": {"resourceType": "Observation", "id": "o1"}}
			]
		}`,
		"broken.json":  `{this is not json`,
		"Patient.json": `{"resourceType": "Patient", "id": "p2"}`,
	})

	svc, docs := newTestService(t, archive, 4)
	reporter := &spyReporter{}

	result := svc.LoadWithProgress(context.Background(), Request{
		ConnectionName: "local",
		BucketName:     "fhir",
	}, reporter)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.ResourcesLoaded)
	assert.Equal(t, 2, result.PatientsLoaded)

	snapshots := reporter.all()
	require.NotEmpty(t, snapshots)
	assert.Equal(t, StatusInitiated, snapshots[0].Status)
	assert.Equal(t, 3, snapshots[0].TotalFiles)

	final := snapshots[len(snapshots)-1]
	assert.Equal(t, StatusCompleted, final.Status)
	assert.Equal(t, 3, final.ProcessedFiles)
	assert.Equal(t, 3, final.ResourcesLoaded)
	assert.Equal(t, 2, final.PatientsLoaded)
	assert.InDelta(t, 100.0, final.PercentComplete, 0.01)

	// Snapshots never report more processed entries than the total.
	for _, p := range snapshots {
		assert.LessOrEqual(t, p.ProcessedFiles, 3)
	}

	exists, err := docs.Exists(context.Background(), "fhir", fhir.ScopeResources, "Patient", "Patient/p2")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoadFaultIsolation(t *testing.T) {
	// 6 entries, 2 malformed: the run completes and counts only the valid 4.
	members := map[string]string{
		"bad-1.json": `not json at all`,
		"bad-2.json": `{"noResourceType": true}`,
	}
	for i := 0; i < 4; i++ {
		members[fmt.Sprintf("Patient-%d.json", i)] = fmt.Sprintf(`{"resourceType":"Patient","id":"p%d"}`, i)
	}
	archive := writeArchive(t, members)

	svc, _ := newTestService(t, archive, 3)
	reporter := &spyReporter{}

	result := svc.LoadWithProgress(context.Background(), Request{
		ConnectionName: "local",
		BucketName:     "fhir",
	}, reporter)

	assert.True(t, result.Success)
	assert.Equal(t, 4, result.ResourcesLoaded)
	assert.Equal(t, 4, result.PatientsLoaded)

	final := reporter.all()[len(reporter.all())-1]
	assert.Equal(t, StatusCompleted, final.Status)
	assert.Equal(t, 6, final.ProcessedFiles)
}

func TestLoadMonotonicProgress(t *testing.T) {
	members := make(map[string]string)
	for i := 0; i < 8; i++ {
		members[fmt.Sprintf("Patient-%d.json", i)] = fmt.Sprintf(`{"resourceType":"Patient","id":"p%d"}`, i)
	}
	archive := writeArchive(t, members)

	// Sequential workers make snapshot ordering deterministic.
	svc, _ := newTestService(t, archive, 1)
	reporter := &spyReporter{}

	svc.LoadWithProgress(context.Background(), Request{
		ConnectionName: "local",
		BucketName:     "fhir",
	}, reporter)

	snapshots := reporter.all()
	last := 0
	for _, p := range snapshots {
		assert.GreaterOrEqual(t, p.ProcessedFiles, last)
		assert.LessOrEqual(t, p.ProcessedFiles, 8)
		last = p.ProcessedFiles
	}
	assert.Equal(t, 8, last)
}

// slowProcessor returns a fixed outcome after a short delay, to shake out
// ordering effects across the worker pool.
type slowProcessor struct {
	delay time.Duration
}

func (s *slowProcessor) Store(_ context.Context, _ fhir.Target, payload []byte, _ bool) (fhir.StoreResult, error) {
	time.Sleep(s.delay)
	var header struct {
		ResourceType string `json:"resourceType"`
		ID           string `json:"id"`
	}
	if err := json.Unmarshal(payload, &header); err != nil {
		return fhir.StoreResult{}, err
	}
	return fhir.StoreResult{Success: true, ResourceType: header.ResourceType, ID: header.ID}, nil
}

func TestLoadCommutativeAccumulation(t *testing.T) {
	members := make(map[string]string)
	for i := 0; i < 20; i++ {
		resourceType := "Observation"
		if i%4 == 0 {
			resourceType = "Patient"
		}
		members[fmt.Sprintf("res-%02d.json", i)] = fmt.Sprintf(`{"resourceType":%q,"id":"r%d"}`, resourceType, i)
	}
	archive := writeArchive(t, members)

	catalog := dataset.NewCatalog(map[string]config.DatasetConfig{
		"synthea": {Archive: archive, PrimaryResourceType: "Patient"},
	})
	svc := NewService(
		&stubResolver{docs: newMemDocs()},
		catalog,
		fhir.NewBundleProcessor(),
		&slowProcessor{delay: time.Millisecond},
		nil,
		5,
	)

	// Totals are independent of completion order across repeated runs.
	for run := 0; run < 3; run++ {
		result := svc.Load(context.Background(), Request{ConnectionName: "local", BucketName: "fhir"})
		assert.True(t, result.Success)
		assert.Equal(t, 20, result.ResourcesLoaded)
		assert.Equal(t, 5, result.PatientsLoaded)
	}
}

func TestLoadUnknownConnection(t *testing.T) {
	archive := writeArchive(t, map[string]string{"Patient.json": `{"resourceType":"Patient"}`})

	catalog := dataset.NewCatalog(map[string]config.DatasetConfig{
		"synthea": {Archive: archive, PrimaryResourceType: "Patient"},
	})
	svc := NewService(
		&stubResolver{err: errors.New("connection not found")},
		catalog,
		fhir.NewBundleProcessor(),
		fhir.NewResourceProcessor(),
		nil,
		4,
	)
	reporter := &spyReporter{}

	result := svc.LoadWithProgress(context.Background(), Request{
		ConnectionName: "missing",
		BucketName:     "fhir",
	}, reporter)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Connection not found")

	snapshots := reporter.all()
	require.Len(t, snapshots, 1)
	assert.Equal(t, StatusError, snapshots[0].Status)
}

func TestLoadUnreadableArchive(t *testing.T) {
	svc, _ := newTestService(t, filepath.Join(t.TempDir(), "missing.zip"), 4)
	reporter := &spyReporter{}

	result := svc.LoadWithProgress(context.Background(), Request{
		ConnectionName: "local",
		BucketName:     "fhir",
	}, reporter)

	assert.False(t, result.Success)

	snapshots := reporter.all()
	require.Len(t, snapshots, 1)
	assert.Equal(t, StatusError, snapshots[0].Status)
}

func TestLoadEmptyArchive(t *testing.T) {
	archive := writeArchive(t, map[string]string{"notes.txt": "nothing eligible"})

	svc, _ := newTestService(t, archive, 4)
	reporter := &spyReporter{}

	result := svc.LoadWithProgress(context.Background(), Request{
		ConnectionName: "local",
		BucketName:     "fhir",
	}, reporter)

	assert.True(t, result.Success)
	assert.Zero(t, result.ResourcesLoaded)

	snapshots := reporter.all()
	require.Len(t, snapshots, 2)
	assert.Equal(t, StatusInitiated, snapshots[0].Status)
	assert.Equal(t, StatusCompleted, snapshots[1].Status)
}

func TestLoadSurvivesPanickingReporter(t *testing.T) {
	archive := writeArchive(t, map[string]string{"Patient.json": `{"resourceType":"Patient","id":"p1"}`})

	svc, _ := newTestService(t, archive, 2)
	reporter := ReporterFunc(func(Progress) { panic("sink gone") })

	result := svc.LoadWithProgress(context.Background(), Request{
		ConnectionName: "local",
		BucketName:     "fhir",
	}, reporter)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ResourcesLoaded)
}
