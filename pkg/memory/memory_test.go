package memory

import (
	"context"
	"testing"
)

func TestCatalog_SimilarCases_FiltersByFamily(t *testing.T) {
	cat := NewCatalog([]Case{
		{CaseID: "1", Family: "crashloop", Tags: []string{"oom"}},
		{CaseID: "2", Family: "http_5xx", Tags: []string{"deploy"}},
	}, nil)

	got, err := cat.SimilarCases(context.Background(), "crashloop", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].CaseID != "1" {
		t.Errorf("SimilarCases() = %+v, want only case 1", got)
	}
}

func TestCatalog_SimilarCases_RanksByTagOverlap(t *testing.T) {
	cat := NewCatalog([]Case{
		{CaseID: "low", Family: "crashloop", Tags: []string{"unrelated"}},
		{CaseID: "high", Family: "crashloop", Tags: []string{"oom", "memory"}},
	}, nil)

	got, err := cat.SimilarCases(context.Background(), "crashloop", []string{"oom", "memory"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].CaseID != "high" {
		t.Errorf("SimilarCases() ranking = %+v, want high-overlap case first", got)
	}
}

func TestCatalog_SimilarCases_RespectsLimit(t *testing.T) {
	cat := NewCatalog([]Case{{CaseID: "1"}, {CaseID: "2"}, {CaseID: "3"}}, nil)
	got, _ := cat.SimilarCases(context.Background(), "", nil, 2)
	if len(got) != 2 {
		t.Errorf("SimilarCases() len = %d, want 2", len(got))
	}
}

func TestCatalog_Skills_FiltersByAppliesTo(t *testing.T) {
	cat := NewCatalog(nil, DefaultSkills())
	got, err := cat.Skills(context.Background(), "cpu_throttling", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "cpu-throttling-triage" {
		t.Errorf("Skills() = %+v, want only the cpu-throttling skill", got)
	}
}

func TestCatalog_Skills_EmptyFamilyReturnsAll(t *testing.T) {
	cat := NewCatalog(nil, DefaultSkills())
	got, err := cat.Skills(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(DefaultSkills()) {
		t.Errorf("Skills() len = %d, want %d", len(got), len(DefaultSkills()))
	}
}
