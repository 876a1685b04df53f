// Package contextpanel builds the display-ready panel for whichever business
// entity a session is anchored to. Resolution is a pure read: a missing or
// unreachable entity degrades to the session's cached snapshot, then to a
// minimal stub carrying only the anchor id. It never fails a turn.
package contextpanel

import (
	"context"
	"fmt"

	"github.com/brokermesh/assistant/core"
	"github.com/brokermesh/assistant/logging"
)

// Source reports where a resolved panel came from, letting callers decide
// whether the result is worth caching as a snapshot.
type Source int

const (
	// SourceGeneric is the fixed panel for unanchored sessions.
	SourceGeneric Source = iota
	// SourceLive means the owning entity was found and the panel rebuilt.
	SourceLive
	// SourceSnapshot means the entity lookup missed and the session's
	// cached snapshot was served instead.
	SourceSnapshot
	// SourceStub means neither entity nor snapshot was available.
	SourceStub
)

// maxPanelDocuments caps the related-document list on a panel.
const maxPanelDocuments = 8

// Options configures a Resolver.
type Options struct {
	Logger logging.Logger
}

// Resolver turns (organization, session) pairs into context panels by
// querying the domain directory for the anchored entity.
type Resolver struct {
	directory core.DomainDirectory
	logger    logging.Logger
}

// New constructs a Resolver. A nil directory is tolerated: every anchored
// resolution then takes the snapshot/stub fallback path.
func New(directory core.DomainDirectory, optFns ...func(o *Options)) *Resolver {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Resolver{directory: directory, logger: opts.Logger}
}

// Resolve builds the panel for a session. The returned Source tells the
// caller whether the panel reflects live entity state.
func (r *Resolver) Resolve(ctx context.Context, orgID string, sess *core.Session) (*core.ContextPanel, Source) {
	switch sess.Variant {
	case "", core.VariantNone:
		return genericPanel(), SourceGeneric
	case core.VariantDeal:
		return r.dealPanel(ctx, orgID, sess)
	case core.VariantListing:
		return r.listingPanel(ctx, orgID, sess)
	case core.VariantProspect:
		return r.prospectPanel(ctx, orgID, sess)
	default:
		r.logger.Warn("unknown context variant %q on session %s", sess.Variant, sess.ID)
		return genericPanel(), SourceGeneric
	}
}

func genericPanel() *core.ContextPanel {
	return &core.ContextPanel{
		Title: "General conversation",
		Fields: []core.PanelField{
			{Label: "Context", Value: "No anchored entity"},
		},
	}
}

// fallback serves the cached snapshot when present, else a stub that carries
// only the anchor id so the UI can still show what the session points at.
func (r *Resolver) fallback(sess *core.Session) (*core.ContextPanel, Source) {
	if sess.Snapshot != nil {
		return sess.Snapshot.Clone(), SourceSnapshot
	}
	return &core.ContextPanel{
		Title: sess.AnchorID,
		Fields: []core.PanelField{
			{Label: "Anchor", Value: sess.AnchorID},
		},
	}, SourceStub
}

func (r *Resolver) dealPanel(ctx context.Context, orgID string, sess *core.Session) (*core.ContextPanel, Source) {
	if r.directory == nil {
		return r.fallback(sess)
	}
	deal, err := r.directory.FindDeal(ctx, orgID, sess.AnchorID)
	if err != nil {
		r.logger.Warn("deal lookup failed for %s: %v", sess.AnchorID, err)
	}
	if deal == nil {
		return r.fallback(sess)
	}

	title := deal.Name
	if title == "" {
		title = deal.ID
	}
	panel := &core.ContextPanel{
		Title:     "Deal: " + title,
		Subtitle:  formatAmount(deal.Amount),
		Link:      deal.Link,
		Documents: capDocuments(deal.Documents),
		Fields: []core.PanelField{
			{Label: "Status", Value: deal.Status},
			{Label: "Buyer", Value: deal.BuyerName},
			{Label: "Seller", Value: deal.SellerName},
			{Label: "Compliance", Value: complianceValue(deal.Flagged, deal.NonCompliant)},
		},
	}
	return panel, SourceLive
}

func (r *Resolver) listingPanel(ctx context.Context, orgID string, sess *core.Session) (*core.ContextPanel, Source) {
	if r.directory == nil {
		return r.fallback(sess)
	}
	listing, err := r.directory.FindListing(ctx, orgID, sess.AnchorID)
	if err != nil {
		r.logger.Warn("listing lookup failed for %s: %v", sess.AnchorID, err)
	}
	if listing == nil {
		return r.fallback(sess)
	}

	title := listing.Address
	if title == "" {
		title = listing.ID
	}
	panel := &core.ContextPanel{
		Title:     "Listing: " + title,
		Subtitle:  formatAmount(listing.Price),
		Link:      listing.Link,
		Documents: capDocuments(listing.Documents),
		Fields: []core.PanelField{
			{Label: "Status", Value: listing.Status},
			{Label: "Owner", Value: listing.OwnerName},
			{Label: "Agent", Value: listing.AgentName},
			{Label: "Compliance", Value: complianceValue(listing.Flagged, listing.NonCompliant)},
		},
	}
	return panel, SourceLive
}

func (r *Resolver) prospectPanel(ctx context.Context, orgID string, sess *core.Session) (*core.ContextPanel, Source) {
	if r.directory == nil {
		return r.fallback(sess)
	}
	prospect, err := r.directory.FindProspect(ctx, orgID, sess.AnchorID)
	if err != nil {
		r.logger.Warn("prospect lookup failed for %s: %v", sess.AnchorID, err)
	}
	if prospect == nil {
		return r.fallback(sess)
	}

	title := prospect.Name
	if title == "" {
		title = prospect.ID
	}
	panel := &core.ContextPanel{
		Title:     "Prospect: " + title,
		Subtitle:  prospect.Stage,
		Link:      prospect.Link,
		Documents: capDocuments(prospect.Documents),
		Fields: []core.PanelField{
			{Label: "Stage", Value: prospect.Stage},
			{Label: "Email", Value: prospect.Email},
			{Label: "Phone", Value: prospect.Phone},
			{Label: "Owner", Value: prospect.OwnerName},
			{Label: "Compliance", Value: complianceValue(prospect.Flagged, prospect.NonCompliant)},
		},
	}
	return panel, SourceLive
}

// complianceValue derives the panel's compliance flag: an entity needs
// attention when it is flagged or explicitly non-compliant.
func complianceValue(flagged, nonCompliant bool) string {
	if flagged || nonCompliant {
		return "Needs attention"
	}
	return "OK"
}

func formatAmount(amount float64) string {
	if amount <= 0 {
		return ""
	}
	return fmt.Sprintf("$%.0f", amount)
}

func capDocuments(docs []core.PanelDocument) []core.PanelDocument {
	if len(docs) <= maxPanelDocuments {
		out := make([]core.PanelDocument, len(docs))
		copy(out, docs)
		return out
	}
	out := make([]core.PanelDocument, maxPanelDocuments)
	copy(out, docs[:maxPanelDocuments])
	return out
}
