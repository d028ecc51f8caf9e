package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/scenaview/internal/apperr"
)

const smallCatalog = `
scenarios:
  - id: a
    name: Fog
  - id: b
    name: Snow
sequences:
  - id: s1
    name: Foggy Pass
    total_frames: 300
    scenarios:
      - scenario_id: a
        percentage: 80
  - id: s2
    name: Alpine Loop
    scenarios:
      - scenario_id: b
        percentage: 20
      - scenario_id: zz
        percentage: 50
`

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if n := len(c.Scenarios()); n != 6 {
		t.Errorf("scenarios = %d, want 6", n)
	}
	if n := len(c.Sequences()); n != 12 {
		t.Errorf("sequences = %d, want 12", n)
	}
	if c.Checksum() == "" {
		t.Error("expected non-empty checksum")
	}
}

func TestScenarioLookups(t *testing.T) {
	c := Default()

	sc, err := c.ScenarioByID("3")
	if err != nil || sc.Name != "Tunnel" {
		t.Fatalf("ScenarioByID(3) = %+v, %v", sc, err)
	}
	if _, err := c.ScenarioByID("99"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestFilterScenarios(t *testing.T) {
	c := Default()
	got := c.FilterScenarios("RO")
	if len(got) != 1 || got[0].Name != "Country Road" {
		t.Errorf("FilterScenarios(RO) = %+v", got)
	}
	if len(c.FilterScenarios("  ")) != 6 {
		t.Error("blank query should return all scenarios")
	}
}

func TestFilterSequencesByName(t *testing.T) {
	c := Default()
	got := c.FilterSequences("drive")
	names := map[string]bool{}
	for _, s := range got {
		names[s.Name] = true
	}
	if len(got) != 2 || !names["Tunnel Drive"] || !names["Night Drive"] {
		t.Errorf("FilterSequences(drive) = %v", names)
	}
}

func TestSequencesByScenario(t *testing.T) {
	c := Default()
	got := c.SequencesByScenario("4", 0)
	if len(got) != 7 {
		t.Errorf("sequences with Rain = %d, want 7", len(got))
	}
	got = c.SequencesByScenario("4", 80)
	if len(got) != 2 {
		t.Errorf("sequences with Rain >= 80 = %d, want 2", len(got))
	}
}

func TestScenarioPercentage(t *testing.T) {
	c := Default()
	if p := c.ScenarioPercentage("1", "2"); p != 85 {
		t.Errorf("percentage = %d, want 85", p)
	}
	if p := c.ScenarioPercentage("1", "3"); p != 0 {
		t.Errorf("absent scenario percentage = %d, want 0", p)
	}
	if p := c.ScenarioPercentage("nope", "2"); p != 0 {
		t.Errorf("unknown sequence percentage = %d, want 0", p)
	}
}

func TestListForDashboard(t *testing.T) {
	c := Default()

	if got := c.ListForDashboard("", ModeAll, ""); len(got) != 0 {
		t.Errorf("no scenario should list nothing, got %d", len(got))
	}
	if got := c.ListForDashboard("1", ModeAll, ""); len(got) != 12 {
		t.Errorf("mode all = %d, want 12", len(got))
	}
	got := c.ListForDashboard("1", ModePresent, "")
	if len(got) != 1 || got[0].Name != "Tunnel Drive" {
		t.Errorf("mode present for City = %+v", got)
	}
	if got := c.ListForDashboard("2", ModePresent, "rush"); len(got) != 1 {
		t.Errorf("present + name filter = %d, want 1", len(got))
	}
}

func TestBrowse(t *testing.T) {
	c := Default()

	if got := c.Browse("", ModeAll, "drive", 0); len(got) != 2 {
		t.Errorf("Browse(no scenario, drive) = %d, want 2", len(got))
	}
	if got := c.Browse("", ModeAll, "", 10); len(got) != 0 {
		t.Errorf("min without scenario should match nothing, got %d", len(got))
	}
	if got := c.Browse("4", ModeAll, "", 0); len(got) != 12 {
		t.Errorf("Browse(4, all) = %d, want 12", len(got))
	}

	got := c.Browse("4", ModeAll, "", 80)
	if len(got) != 2 || got[0].Name != "Highway Journey" || got[1].Name != "Construction Zone" {
		t.Errorf("Browse(4, min 80) = %+v", got)
	}
	for _, sq := range got {
		if p := c.ScenarioPercentage(sq.ID, "4"); p < 80 {
			t.Errorf("%s share = %d", sq.Name, p)
		}
	}
	if got := c.Browse("4", ModePresent, "trip", 60); len(got) != 1 || got[0].Name != "Weekend Trip" {
		t.Errorf("Browse(4, present, trip, 60) = %+v", got)
	}
}

func TestListForDashboardDoesNotMutateCatalog(t *testing.T) {
	c := Default()
	_ = c.ListForDashboard("1", ModePresent, "")
	if len(c.Sequences()) != 12 || c.Sequences()[0].Name != "Morning Commute" {
		t.Error("dashboard filtering modified the catalog")
	}
}

func TestLoad_MissingFileUsesBuiltin(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Scenarios()) != 6 {
		t.Error("expected builtin catalog")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(smallCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	seq, err := c.SequenceByID("s2")
	if err != nil {
		t.Fatal(err)
	}
	if seq.Frames() != 1000 {
		t.Errorf("default frames = %d, want 1000", seq.Frames())
	}
	if p := c.ScenarioPercentage("s2", "zz"); p != 50 {
		t.Errorf("dangling scenario share = %d, want 50", p)
	}
}

func TestReplace(t *testing.T) {
	c := Default()
	before := c.Checksum()

	changed, err := c.Replace([]byte(smallCatalog))
	if err != nil || !changed {
		t.Fatalf("Replace = %v, %v", changed, err)
	}
	if c.Checksum() == before {
		t.Error("checksum should change")
	}

	changed, err = c.Replace([]byte(smallCatalog))
	if err != nil || changed {
		t.Errorf("identical content: changed=%v err=%v", changed, err)
	}
}

func TestReplace_InvalidKeepsContent(t *testing.T) {
	c := Default()
	cases := map[string]string{
		"bad yaml":     "scenarios: [",
		"no sequences": "scenarios:\n  - id: a\n    name: A\n",
		"dup scenario": "scenarios:\n  - id: a\n    name: A\n  - id: a\n    name: B\nsequences:\n  - id: s\n    name: S\n",
		"bad share":    "scenarios:\n  - id: a\n    name: A\nsequences:\n  - id: s\n    name: S\n    scenarios:\n      - scenario_id: a\n        percentage: 140\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := c.Replace([]byte(raw)); err == nil {
				t.Fatal("expected error")
			}
			if len(c.Scenarios()) != 6 {
				t.Error("catalog content changed after rejected replace")
			}
		})
	}
}
