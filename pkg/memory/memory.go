// Package memory defines the read-only interface the chat tool runtime
// consults for `memory.similar_cases` and `memory.skills` (§4.4), plus an
// in-process catalog implementation suitable for tests and for seeding a
// small built-in skills library. Persistent storage of cases is an
// external collaborator per spec §1 Non-goals; this package never writes.
package memory

import (
	"context"
	"sort"
	"strings"
)

// Case is one past investigation summary a similarity search can surface.
type Case struct {
	CaseID      string   `json:"case_id"`
	Family      string   `json:"family"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags,omitempty"`
	Resolution  string   `json:"resolution,omitempty"`
}

// Skill is one runbook/playbook entry.
type Skill struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	AppliesTo   []string `json:"applies_to,omitempty"` // family names
}

// Store is the narrow read-only surface the tool runtime depends on.
// Implementations must not mutate state observable to callers; the only
// sink for investigation data is the Investigation value itself.
type Store interface {
	SimilarCases(ctx context.Context, family string, tags []string, limit int) ([]Case, error)
	Skills(ctx context.Context, family string, limit int) ([]Skill, error)
}

// Catalog is an in-process Store backed by a fixed slice, suitable for
// tests and as the default when no external memory backend is configured.
type Catalog struct {
	cases  []Case
	skills []Skill
}

// NewCatalog builds a Catalog over the given cases and skills.
func NewCatalog(cases []Case, skills []Skill) *Catalog {
	return &Catalog{cases: cases, skills: skills}
}

// SimilarCases returns cases matching family (case-insensitive), ranked by
// tag overlap with the requested tags, most-overlapping first, capped at
// limit.
func (c *Catalog) SimilarCases(_ context.Context, family string, tags []string, limit int) ([]Case, error) {
	var matches []Case
	for _, cs := range c.cases {
		if family != "" && !strings.EqualFold(cs.Family, family) {
			continue
		}
		matches = append(matches, cs)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return tagOverlap(matches[i].Tags, tags) > tagOverlap(matches[j].Tags, tags)
	})
	return capCases(matches, limit), nil
}

// Skills returns skills applicable to family, capped at limit. When family
// is empty, every registered skill is returned.
func (c *Catalog) Skills(_ context.Context, family string, limit int) ([]Skill, error) {
	var matches []Skill
	for _, sk := range c.skills {
		if family == "" || appliesTo(sk, family) {
			matches = append(matches, sk)
		}
	}
	return capSkills(matches, limit), nil
}

func appliesTo(sk Skill, family string) bool {
	if len(sk.AppliesTo) == 0 {
		return true
	}
	for _, f := range sk.AppliesTo {
		if strings.EqualFold(f, family) {
			return true
		}
	}
	return false
}

func tagOverlap(have, want []string) int {
	set := make(map[string]bool, len(want))
	for _, t := range want {
		set[strings.ToLower(t)] = true
	}
	n := 0
	for _, t := range have {
		if set[strings.ToLower(t)] {
			n++
		}
	}
	return n
}

func capCases(cases []Case, limit int) []Case {
	if limit <= 0 || limit >= len(cases) {
		return cases
	}
	return cases[:limit]
}

func capSkills(skills []Skill, limit int) []Skill {
	if limit <= 0 || limit >= len(skills) {
		return skills
	}
	return skills[:limit]
}

// DefaultSkills is a small built-in catalog grounded on the crashloop
// decision table and the other families' baseline collectors, used when no
// richer skills source is configured.
func DefaultSkills() []Skill {
	return []Skill{
		{
			Name:        "crashloop-triage",
			Description: "Check last terminated exit code, probe failure type, and crash duration before escalating a crashlooping pod.",
			AppliesTo:   []string{"crashloop", "oom_killed"},
		},
		{
			Name:        "http-5xx-triage",
			Description: "Correlate HTTP 5xx rate with recent deploys and upstream dependency health before filing a service incident.",
			AppliesTo:   []string{"http_5xx", "target_down"},
		},
		{
			Name:        "cpu-throttling-triage",
			Description: "Compare CPU usage against configured limits; a throttled container with usage near its limit usually needs a limit increase, not a restart.",
			AppliesTo:   []string{"cpu_throttling"},
		},
	}
}
