package dataset

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lmchoi/nitpicker/internal/domain"
)

// Writer persists one named dataset and returns the path written.
type Writer interface {
	Write(name string, samples []domain.Sample) (string, error)
}

// Store records samples durably alongside the exported files.
type Store interface {
	SaveSamples(ctx context.Context, dataset string, samples []domain.Sample) error
}

// Manager orchestrates dataset creation: generation or collection, export to
// JSONL, and persistence.
type Manager struct {
	generator *Generator
	collector *Collector
	writer    Writer
	store     Store // optional
}

// NewManager wires the dataset pipeline. collector and store may be nil when
// the corresponding feature is unconfigured.
func NewManager(generator *Generator, collector *Collector, writer Writer, store Store) *Manager {
	return &Manager{
		generator: generator,
		collector: collector,
		writer:    writer,
		store:     store,
	}
}

// Generate produces the synthetic datasets and saves them.
func (m *Manager) Generate(ctx context.Context) (map[string][]domain.Sample, error) {
	datasets := map[string][]domain.Sample{
		"bug_detection": m.generator.BugSamples(),
		"clean_code":    m.generator.CleanSamples(),
	}
	if err := m.save(ctx, datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

// Collect gathers real-world samples from the given repositories and saves
// them as the real_world dataset.
func (m *Manager) Collect(ctx context.Context, repos []string, prNumbers []int, perRepoLimit int) (map[string][]domain.Sample, error) {
	if m.collector == nil {
		return nil, fmt.Errorf("no collector configured (missing GitHub token?)")
	}

	var samples []domain.Sample
	for _, repo := range repos {
		collected, err := m.collector.CollectRepo(ctx, repo, prNumbers, perRepoLimit)
		if err != nil {
			return nil, err
		}
		samples = append(samples, collected...)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples collected")
	}

	datasets := map[string][]domain.Sample{"real_world": samples}
	if err := m.save(ctx, datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

func (m *Manager) save(ctx context.Context, datasets map[string][]domain.Sample) error {
	for name, samples := range datasets {
		for i, sample := range samples {
			if err := sample.Validate(); err != nil {
				return fmt.Errorf("dataset %s sample %d: %w", name, i, err)
			}
		}
		if _, err := m.writer.Write(name, samples); err != nil {
			return fmt.Errorf("write dataset %s: %w", name, err)
		}
		if m.store != nil {
			if err := m.store.SaveSamples(ctx, name, samples); err != nil {
				return fmt.Errorf("store dataset %s: %w", name, err)
			}
		}
	}
	return nil
}

// WriteSummary prints a per-dataset sample count table, with dataset names
// title-cased for reading.
func WriteSummary(w io.Writer, datasets map[string][]domain.Sample) {
	names := make([]string, 0, len(datasets))
	total := 0
	for name, samples := range datasets {
		names = append(names, name)
		total += len(samples)
	}
	sort.Strings(names)

	titler := cases.Title(language.English)
	fmt.Fprintf(w, "Dataset summary (%d samples):\n", total)
	for _, name := range names {
		title := titler.String(strings.ReplaceAll(name, "_", " "))
		fmt.Fprintf(w, "  - %s: %d samples\n", title, len(datasets[name]))
	}
}
