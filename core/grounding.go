package core

import (
	"context"
	"time"
)

// SearchResult is one ranked hit from the search collaborator. Type uses the
// search service's entity-type vocabulary ("prospect", "listing", "deal",
// "lease", ...).
type SearchResult struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchClient is the boundary to the external search/ranking engine.
type SearchClient interface {
	Search(ctx context.Context, orgID, query string) ([]SearchResult, error)
}

// TimelineEntry is one activity item in an entity's timeline.
type TimelineEntry struct {
	At      time.Time `json:"at"`
	Kind    string    `json:"kind"`
	Summary string    `json:"summary"`
}

// EntityTimeline bundles an entity reference with its fetched activity items.
type EntityTimeline struct {
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Entries    []TimelineEntry `json:"entries,omitempty"`
}

// TimelineClient is the boundary to the per-entity activity-timeline service.
type TimelineClient interface {
	Timeline(ctx context.Context, orgID, entityType, entityID string) (*EntityTimeline, error)
}

// GroundingResult is the bundle assembled for a single reply: the active
// context panel (pass-through), ranked search hits, per-entity timelines,
// the two optional specialist opinions, and the advertised action catalog.
// Every field other than ActionCatalog may be absent when the corresponding
// lookup degraded; absence is never an error.
type GroundingResult struct {
	ContextPanel   *ContextPanel        `json:"context_panel,omitempty"`
	SearchResults  []SearchResult       `json:"search_results,omitempty"`
	Timelines      []EntityTimeline     `json:"timelines,omitempty"`
	DealOpinion    *PersonaOutput       `json:"deal_opinion,omitempty"`
	NurtureOpinion *PersonaOutput       `json:"nurture_opinion,omitempty"`
	ActionCatalog  []ActionCatalogEntry `json:"action_catalog,omitempty"`
}
