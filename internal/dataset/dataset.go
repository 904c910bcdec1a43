package dataset

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jdoherty/fhir-admin/config"
)

// Selectors for the shipped sample datasets.
const (
	SelectorSynthea = "synthea"
	SelectorUSCore  = "us-core"
)

// Dataset describes one loadable sample archive.
type Dataset struct {
	Selector            string
	Archive             string
	PrimaryResourceType string
	CreateTestUsers     bool
}

// NormalizeSelector maps the caller-supplied sample type onto a catalog
// selector. Unknown or empty values fall back to the Synthea dataset.
func NormalizeSelector(sampleType string) string {
	switch strings.ToLower(sampleType) {
	case "uscore", SelectorUSCore:
		return SelectorUSCore
	default:
		return SelectorSynthea
	}
}

// Catalog holds the configured sample datasets.
type Catalog struct {
	datasets map[string]Dataset
}

func NewCatalog(cfgs map[string]config.DatasetConfig) *Catalog {
	datasets := make(map[string]Dataset, len(cfgs))
	for selector, cfg := range cfgs {
		datasets[selector] = Dataset{
			Selector:            selector,
			Archive:             cfg.Archive,
			PrimaryResourceType: cfg.PrimaryResourceType,
			CreateTestUsers:     cfg.CreateTestUsers,
		}
	}
	return &Catalog{datasets: datasets}
}

// Get resolves a caller-supplied sample type to a dataset.
func (c *Catalog) Get(sampleType string) (Dataset, error) {
	selector := NormalizeSelector(sampleType)
	ds, ok := c.datasets[selector]
	if !ok {
		return Dataset{}, fmt.Errorf("unknown dataset: %s", selector)
	}
	return ds, nil
}

// Available reports which datasets have a reachable archive.
func (c *Catalog) Available(ctx context.Context) map[string]bool {
	out := make(map[string]bool, len(c.datasets))
	for selector, ds := range c.datasets {
		out[selector] = archiveExists(ctx, ds.Archive)
	}
	return out
}

// Selectors lists the configured dataset selectors in stable order.
func (c *Catalog) Selectors() []string {
	out := make([]string, 0, len(c.datasets))
	for selector := range c.datasets {
		out = append(out, selector)
	}
	sort.Strings(out)
	return out
}
