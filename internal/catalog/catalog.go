// Package catalog provides the scenario and sequence reference data.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/scenaview/internal/apperr"
	"github.com/starford/scenaview/internal/checksum"
	"github.com/starford/scenaview/internal/models"
)

// View modes for the dashboard sequence list.
const (
	ModeAll     = "all"
	ModePresent = "present"
)

// Data is the serialisable catalog content.
type Data struct {
	Scenarios []models.Scenario `yaml:"scenarios"`
	Sequences []models.Sequence `yaml:"sequences"`
}

// Validate checks required fields and id uniqueness. Scenario ids referenced
// by sequence shares are not required to exist.
func (d *Data) Validate() error {
	if err := validation.ValidateStruct(d,
		validation.Field(&d.Scenarios, validation.Required),
		validation.Field(&d.Sequences, validation.Required),
	); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(d.Scenarios))
	for i := range d.Scenarios {
		sc := &d.Scenarios[i]
		if err := validation.ValidateStruct(sc,
			validation.Field(&sc.ID, validation.Required),
			validation.Field(&sc.Name, validation.Required),
		); err != nil {
			return fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		if _, dup := seen[sc.ID]; dup {
			return fmt.Errorf("scenarios[%d]: duplicate id %q", i, sc.ID)
		}
		seen[sc.ID] = struct{}{}
	}

	seen = make(map[string]struct{}, len(d.Sequences))
	for i := range d.Sequences {
		sq := &d.Sequences[i]
		if err := validation.ValidateStruct(sq,
			validation.Field(&sq.ID, validation.Required),
			validation.Field(&sq.Name, validation.Required),
			validation.Field(&sq.TotalFrames, validation.Min(0)),
		); err != nil {
			return fmt.Errorf("sequences[%d]: %w", i, err)
		}
		if _, dup := seen[sq.ID]; dup {
			return fmt.Errorf("sequences[%d]: duplicate id %q", i, sq.ID)
		}
		seen[sq.ID] = struct{}{}
		for j := range sq.Scenarios {
			sh := &sq.Scenarios[j]
			if err := validation.ValidateStruct(sh,
				validation.Field(&sh.ScenarioID, validation.Required),
				validation.Field(&sh.Percentage, validation.Min(0), validation.Max(100)),
			); err != nil {
				return fmt.Errorf("sequences[%d].scenarios[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

// Catalog serves read-only lookups over the current Data. The content can be
// swapped atomically by Replace; readers always see a consistent snapshot.
type Catalog struct {
	mu       sync.RWMutex
	data     Data
	checksum string
}

// Default returns a catalog holding the built-in reference data.
func Default() *Catalog {
	c, err := New(builtin())
	if err != nil {
		panic(fmt.Sprintf("catalog: builtin data invalid: %v", err))
	}
	return c
}

// New returns a catalog over d after validating it.
func New(d Data) (*Catalog, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	raw, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("catalog: marshal: %w", err)
	}
	return &Catalog{data: d, checksum: checksum.Sum(raw)}, nil
}

// Load reads a YAML catalog file. An empty path or a missing file yields the
// built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c := &Catalog{}
	if _, err := c.Replace(raw); err != nil {
		return nil, err
	}
	return c, nil
}

// Replace parses raw YAML and swaps it in. It reports false without error
// when raw has the same checksum as the current content. On error the
// current content is kept.
func (c *Catalog) Replace(raw []byte) (bool, error) {
	sum := checksum.Sum(raw)

	c.mu.RLock()
	same := sum == c.checksum
	c.mu.RUnlock()
	if same {
		return false, nil
	}

	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return false, fmt.Errorf("catalog: parse: %w", err)
	}
	if err := d.Validate(); err != nil {
		return false, fmt.Errorf("catalog: %w", err)
	}

	c.mu.Lock()
	c.data = d
	c.checksum = sum
	c.mu.Unlock()
	return true, nil
}

// Checksum identifies the current content; it changes on every Replace.
func (c *Catalog) Checksum() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checksum
}

// Scenarios returns all scenarios in catalog order.
func (c *Catalog) Scenarios() []models.Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.data.Scenarios)
}

// ScenarioByID returns the scenario with the given id.
func (c *Catalog) ScenarioByID(id string) (models.Scenario, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, sc := range c.data.Scenarios {
		if sc.ID == id {
			return sc, nil
		}
	}
	return models.Scenario{}, fmt.Errorf("scenario %q: %w", id, apperr.ErrNotFound)
}

// FilterScenarios returns scenarios whose name contains query, ignoring case.
// An empty query returns every scenario.
func (c *Catalog) FilterScenarios(query string) []models.Scenario {
	all := c.Scenarios()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}
	out := make([]models.Scenario, 0, len(all))
	for _, sc := range all {
		if strings.Contains(strings.ToLower(sc.Name), q) {
			out = append(out, sc)
		}
	}
	return out
}

// Sequences returns all sequences in catalog order.
func (c *Catalog) Sequences() []models.Sequence {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.data.Sequences)
}

// SequenceByID returns the sequence with the given id.
func (c *Catalog) SequenceByID(id string) (models.Sequence, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, sq := range c.data.Sequences {
		if sq.ID == id {
			return sq, nil
		}
	}
	return models.Sequence{}, fmt.Errorf("sequence %q: %w", id, apperr.ErrNotFound)
}

// SequencesByScenario returns sequences containing scenarioID with a share of
// at least minPercentage.
func (c *Catalog) SequencesByScenario(scenarioID string, minPercentage int) []models.Sequence {
	var out []models.Sequence
	for _, sq := range c.Sequences() {
		if sh, ok := sq.Share(scenarioID); ok && sh.Percentage >= minPercentage {
			out = append(out, sq)
		}
	}
	return out
}

// ScenarioPercentage returns the share of scenarioID in sequenceID, or 0 when
// either is unknown.
func (c *Catalog) ScenarioPercentage(sequenceID, scenarioID string) int {
	sq, err := c.SequenceByID(sequenceID)
	if err != nil {
		return 0
	}
	sh, _ := sq.Share(scenarioID)
	return sh.Percentage
}

// FilterSequences returns sequences whose name contains name, ignoring case.
// An empty name returns every sequence.
func (c *Catalog) FilterSequences(name string) []models.Sequence {
	return filterByName(c.Sequences(), name)
}

// ListForDashboard returns the sequence list shown for a selected scenario.
// Without a scenario the list is empty. ModePresent keeps only sequences that
// carry a share for the scenario; name narrows by substring.
func (c *Catalog) ListForDashboard(scenarioID, mode, name string) []models.Sequence {
	if scenarioID == "" {
		return []models.Sequence{}
	}
	seqs := c.Sequences()
	if mode == ModePresent {
		seqs = c.SequencesByScenario(scenarioID, 0)
	}
	return filterByName(seqs, name)
}

// Browse returns the sequence list served to API clients. Without a scenario
// every sequence whose name contains name is listed; with one the dashboard
// rules of ListForDashboard apply. A positive minPercentage further keeps
// only sequences whose share of the scenario reaches it.
func (c *Catalog) Browse(scenarioID, mode, name string, minPercentage int) []models.Sequence {
	var seqs []models.Sequence
	if scenarioID == "" {
		seqs = c.FilterSequences(name)
	} else {
		seqs = c.ListForDashboard(scenarioID, mode, name)
	}
	if minPercentage <= 0 {
		return seqs
	}

	strong := make(map[string]struct{})
	for _, sq := range c.SequencesByScenario(scenarioID, minPercentage) {
		strong[sq.ID] = struct{}{}
	}
	out := make([]models.Sequence, 0, len(strong))
	for _, sq := range seqs {
		if _, ok := strong[sq.ID]; ok {
			out = append(out, sq)
		}
	}
	return out
}

func filterByName(seqs []models.Sequence, name string) []models.Sequence {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return seqs
	}
	out := make([]models.Sequence, 0, len(seqs))
	for _, sq := range seqs {
		if strings.Contains(strings.ToLower(sq.Name), q) {
			out = append(out, sq)
		}
	}
	return out
}
