// Package grounding assembles the bundle of search results, per-entity
// activity timelines and specialist opinions that informs a single reply.
// Every sub-lookup is best effort with its own failure domain: a failing
// timeline omits that entity's timeline, a failing specialist leaves its slot
// empty, and a failing search degrades the whole gather to just the active
// context panel and the action catalog. Gather never returns an error.
package grounding

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brokermesh/assistant/catalog"
	"github.com/brokermesh/assistant/core"
	"github.com/brokermesh/assistant/logging"
)

// maxTopResults caps how many search hits seed timeline and specialist
// lookups.
const maxTopResults = 5

// timelineEntityTypes is the whitelist of anchor-bearing entity types whose
// timelines are worth fetching.
var timelineEntityTypes = map[string]bool{
	"prospect": true,
	"listing":  true,
	"deal":     true,
	"lease":    true,
}

// followUpPhrases is the fixed vocabulary for the follow-up-intent check.
// Matching is a case-insensitive substring test; deliberately coarse, since
// broadening it changes which messages trigger the nurture specialist.
var followUpPhrases = []string{
	"follow up",
	"follow-up",
	"followup",
	"check in",
	"check-in",
	"reach out",
	"touch base",
	"nurture",
}

// Options configures a Gatherer.
type Options struct {
	Logger logging.Logger
}

// Gatherer fans out to the search, timeline and persona collaborators to
// build grounding for one turn.
type Gatherer struct {
	search    core.SearchClient
	timelines core.TimelineClient
	personas  core.PersonaRunner
	logger    logging.Logger
}

// New constructs a Gatherer. Nil collaborators are tolerated; the affected
// lookups then take their degraded path.
func New(search core.SearchClient, timelines core.TimelineClient, personas core.PersonaRunner, optFns ...func(o *Options)) *Gatherer {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gatherer{search: search, timelines: timelines, personas: personas, logger: opts.Logger}
}

// Gather builds the grounding bundle for a message. The active context panel
// is passed through; the action catalog is always included so the caller can
// advertise capabilities downstream.
func (g *Gatherer) Gather(ctx context.Context, orgID, userID, messageText string, panel *core.ContextPanel) *core.GroundingResult {
	result := &core.GroundingResult{
		ContextPanel:  panel,
		ActionCatalog: catalog.Entries(),
	}

	if g.search == nil {
		return result
	}

	started := time.Now()
	hits, err := g.search.Search(ctx, orgID, messageText)
	if err != nil {
		g.logger.Warn("grounding search failed: %v", err)
		return result
	}
	top := hits
	if len(top) > maxTopResults {
		top = top[:maxTopResults]
	}
	result.SearchResults = top

	timelineSlots := make([]core.Attempt[*core.EntityTimeline], len(top))
	var dealOpinion, nurtureOpinion core.Attempt[*core.PersonaOutput]

	eg, gctx := errgroup.WithContext(ctx)

	for i, hit := range top {
		i, hit := i, hit
		if g.timelines == nil || !timelineEntityTypes[hit.Type] {
			continue
		}
		eg.Go(func() error {
			tl, err := g.timelines.Timeline(gctx, orgID, hit.Type, hit.ID)
			if err != nil {
				g.logger.Debug("timeline fetch failed for %s %s: %v", hit.Type, hit.ID, err)
				timelineSlots[i] = core.Fail[*core.EntityTimeline](err)
				return nil
			}
			timelineSlots[i] = core.Succeed(tl)
			return nil
		})
	}

	if g.personas != nil {
		if deal, ok := firstOfType(top, "deal"); ok {
			eg.Go(func() error {
				dealOpinion = g.runSpecialist(gctx, core.PersonaDealCoordinator, orgID, userID, deal.ID, messageText)
				return nil
			})
		}
		if prospect, ok := firstOfType(top, "prospect"); ok && HasFollowUpIntent(messageText) {
			eg.Go(func() error {
				nurtureOpinion = g.runSpecialist(gctx, core.PersonaNurtureDraft, orgID, userID, prospect.ID, messageText)
				return nil
			})
		}
	}

	// Sub-lookups never surface errors; Wait only synchronizes.
	_ = eg.Wait()

	for _, slot := range timelineSlots {
		if slot.Ok() && slot.Value != nil {
			result.Timelines = append(result.Timelines, *slot.Value)
		}
	}
	if dealOpinion.Ok() {
		result.DealOpinion = dealOpinion.Value
	}
	if nurtureOpinion.Ok() {
		result.NurtureOpinion = nurtureOpinion.Value
	}

	g.logger.Debug("grounding gathered results=%d timelines=%d duration=%s", len(result.SearchResults), len(result.Timelines), time.Since(started))

	return result
}

// runSpecialist performs one best-effort persona call for a grounding slot.
func (g *Gatherer) runSpecialist(ctx context.Context, key core.PersonaKey, orgID, userID, anchorID, messageText string) core.Attempt[*core.PersonaOutput] {
	out, err := g.personas.Run(ctx, key, core.PersonaInput{
		OrganizationID: orgID,
		UserID:         userID,
		AnchorID:       anchorID,
		Input:          map[string]any{"message": messageText},
	})
	if err != nil {
		g.logger.Debug("specialist %s failed for %s: %v", key, anchorID, err)
		return core.Fail[*core.PersonaOutput](err)
	}
	return core.Succeed(out)
}

func firstOfType(hits []core.SearchResult, entityType string) (core.SearchResult, bool) {
	for _, h := range hits {
		if h.Type == entityType {
			return h, true
		}
	}
	return core.SearchResult{}, false
}

// HasFollowUpIntent reports whether the message matches the fixed
// follow-up-intent phrase list.
func HasFollowUpIntent(messageText string) bool {
	lower := strings.ToLower(messageText)
	for _, phrase := range followUpPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
