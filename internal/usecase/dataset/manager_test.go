package dataset_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmchoi/nitpicker/internal/domain"
	"github.com/lmchoi/nitpicker/internal/usecase/dataset"
)

// fakeWriter records what was exported.
type fakeWriter struct {
	written map[string][]domain.Sample
	err     error
}

func (f *fakeWriter) Write(name string, samples []domain.Sample) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.written == nil {
		f.written = make(map[string][]domain.Sample)
	}
	f.written[name] = samples
	return name + ".jsonl", nil
}

// fakeStore records saved datasets.
type fakeStore struct {
	saved map[string]int
}

func (f *fakeStore) SaveSamples(ctx context.Context, name string, samples []domain.Sample) error {
	if f.saved == nil {
		f.saved = make(map[string]int)
	}
	f.saved[name] += len(samples)
	return nil
}

func TestManager_Generate(t *testing.T) {
	writer := &fakeWriter{}
	store := &fakeStore{}
	manager := dataset.NewManager(dataset.NewGenerator(), nil, writer, store)

	datasets, err := manager.Generate(context.Background())
	require.NoError(t, err)

	require.Contains(t, datasets, "bug_detection")
	require.Contains(t, datasets, "clean_code")
	assert.Len(t, datasets["bug_detection"], 3)
	assert.Len(t, datasets["clean_code"], 1)

	// Both exported and stored.
	assert.Len(t, writer.written["bug_detection"], 3)
	assert.Equal(t, 3, store.saved["bug_detection"])
	assert.Equal(t, 1, store.saved["clean_code"])
}

func TestManager_Generate_NilStoreSkipsPersistence(t *testing.T) {
	writer := &fakeWriter{}
	manager := dataset.NewManager(dataset.NewGenerator(), nil, writer, nil)

	_, err := manager.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, writer.written, 2)
}

func TestManager_Generate_WriterFailure(t *testing.T) {
	writer := &fakeWriter{err: errors.New("disk full")}
	manager := dataset.NewManager(dataset.NewGenerator(), nil, writer, nil)

	_, err := manager.Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestManager_Collect(t *testing.T) {
	api := newFakeAPI()
	writer := &fakeWriter{}
	manager := dataset.NewManager(dataset.NewGenerator(), dataset.NewCollector(api), writer, nil)

	datasets, err := manager.Collect(context.Background(), []string{"lmchoi/widgets"}, []int{10, 11}, 5)
	require.NoError(t, err)

	require.Contains(t, datasets, "real_world")
	assert.Len(t, datasets["real_world"], 2)
	assert.Len(t, writer.written["real_world"], 2)
}

func TestManager_Collect_WithoutCollector(t *testing.T) {
	manager := dataset.NewManager(dataset.NewGenerator(), nil, &fakeWriter{}, nil)

	_, err := manager.Collect(context.Background(), []string{"lmchoi/widgets"}, nil, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no collector")
}

func TestWriteSummary(t *testing.T) {
	datasets := map[string][]domain.Sample{
		"bug_detection": make([]domain.Sample, 3),
		"clean_code":    make([]domain.Sample, 1),
	}

	var buf bytes.Buffer
	dataset.WriteSummary(&buf, datasets)

	out := buf.String()
	assert.Contains(t, out, "Dataset summary (4 samples):")
	assert.Contains(t, out, "Bug Detection: 3 samples")
	assert.Contains(t, out, "Clean Code: 1 samples")
}
