package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/awaistahir/heatpumpiq/internal/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleProject() *Project {
	return &Project{
		Name:    "Maple St retrofit",
		ZipCode: "55401",
		Building: engine.BuildingProfile{
			SquareFeet: 1800,
			BuildYear:  1978,
			Climate:    engine.ClimateProfile{Zone: engine.Zone6A, DesignTempF: -11},
		},
		ModelID: "mitsubishi-mxz-4c36na",
		Load: &engine.LoadResult{
			HeatingBTU:  43200,
			CoolingBTU:  25200,
			RangeMinBTU: 38880,
			RangeMaxBTU: 47520,
			Notes:       []string{"1800 sqft, built 1978"},
		},
	}
}

func TestSaveAndGetProject(t *testing.T) {
	s := newTestStore(t)

	p := sampleProject()
	id, err := s.SaveProject(p)
	if err != nil {
		t.Fatalf("saving project: %v", err)
	}
	if id == "" {
		t.Fatal("expected an assigned project id")
	}

	got, err := s.GetProject(id)
	if err != nil {
		t.Fatalf("loading project: %v", err)
	}
	if got.Name != p.Name || got.ZipCode != p.ZipCode || got.ModelID != p.ModelID {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.Building.SquareFeet != 1800 || got.Building.Climate.Zone != engine.Zone6A {
		t.Errorf("building payload mismatch: %+v", got.Building)
	}
	if got.Load == nil || got.Load.HeatingBTU != 43200 {
		t.Errorf("load payload mismatch: %+v", got.Load)
	}
	if got.Coverage != nil || got.Costs != nil || got.Aggregate != nil {
		t.Error("unset result payloads should stay nil")
	}
}

func TestSaveProjectUpdate(t *testing.T) {
	s := newTestStore(t)

	p := sampleProject()
	id, err := s.SaveProject(p)
	if err != nil {
		t.Fatalf("saving project: %v", err)
	}

	p.Coverage = &engine.CoverageResult{
		DeliveredCapacityBTU: 27000,
		CoverageRatio:        0.625,
		BackupHeatBTU:        16200,
		Rating:               engine.RatingInadequate,
	}
	id2, err := s.SaveProject(p)
	if err != nil {
		t.Fatalf("updating project: %v", err)
	}
	if id2 != id {
		t.Errorf("update changed id from %s to %s", id, id2)
	}

	got, err := s.GetProject(id)
	if err != nil {
		t.Fatalf("loading project: %v", err)
	}
	if got.Coverage == nil || got.Coverage.Rating != engine.RatingInadequate {
		t.Errorf("coverage not persisted: %+v", got.Coverage)
	}
}

func TestSaveProjectRequiresName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SaveProject(&Project{}); err == nil {
		t.Error("expected error for unnamed project")
	}
}

func TestListAndDeleteProjects(t *testing.T) {
	s := newTestStore(t)

	first := sampleProject()
	second := sampleProject()
	second.Name = "Lake cabin"
	id1, err := s.SaveProject(first)
	if err != nil {
		t.Fatalf("saving project: %v", err)
	}
	if _, err := s.SaveProject(second); err != nil {
		t.Fatalf("saving project: %v", err)
	}

	projects, err := s.ListProjects()
	if err != nil {
		t.Fatalf("listing projects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("listed %d projects, want 2", len(projects))
	}

	if err := s.DeleteProject(id1); err != nil {
		t.Fatalf("deleting project: %v", err)
	}
	_, err = s.GetProject(id1)
	var nf *engine.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("want NotFoundError after delete, got %v", err)
	}

	err = s.DeleteProject("no-such-id")
	if !errors.As(err, &nf) {
		t.Errorf("deleting unknown project: want NotFoundError, got %v", err)
	}
}

func TestRateCache(t *testing.T) {
	s := newTestStore(t)

	info := engine.RateInfo{USDPerKWh: 0.145, Source: "live"}
	if err := s.CacheRate("MN", info); err != nil {
		t.Fatalf("caching rate: %v", err)
	}

	got, ok, err := s.GetCachedRate("MN", time.Hour)
	if err != nil {
		t.Fatalf("reading cached rate: %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.USDPerKWh != 0.145 || got.Source != "live" {
		t.Errorf("cached rate mismatch: %+v", got)
	}

	// A zero max age treats everything as stale.
	_, ok, err = s.GetCachedRate("MN", 0)
	if err != nil {
		t.Fatalf("reading cached rate: %v", err)
	}
	if ok {
		t.Error("expected stale entry to miss")
	}

	_, ok, err = s.GetCachedRate("WI", time.Hour)
	if err != nil {
		t.Fatalf("reading cached rate: %v", err)
	}
	if ok {
		t.Error("expected miss for an uncached state")
	}
}
