package core

import "context"

// DealRecord is the slice of a deal the panel resolver needs: enough to build
// a title, price subtitle, counterpart names, compliance state and document
// links. The owning deal service holds the full aggregate.
type DealRecord struct {
	ID           string
	Name         string
	Status       string
	Amount       float64
	BuyerName    string
	SellerName   string
	Flagged      bool
	NonCompliant bool
	Link         string
	Documents    []PanelDocument
}

// ListingRecord is the panel-facing slice of a property listing.
type ListingRecord struct {
	ID           string
	Address      string
	Status       string
	Price        float64
	OwnerName    string
	AgentName    string
	Flagged      bool
	NonCompliant bool
	Link         string
	Documents    []PanelDocument
}

// ProspectRecord is the panel-facing slice of a prospect (lead).
type ProspectRecord struct {
	ID           string
	Name         string
	Stage        string
	Email        string
	Phone        string
	OwnerName    string
	Flagged      bool
	NonCompliant bool
	Link         string
	Documents    []PanelDocument
}

// DomainDirectory looks up the business entity a session is anchored to,
// scoped to an organization. A missing entity is reported as (nil, nil);
// errors are reserved for lookup failures. Callers must treat both the same
// way: fall back, never fail the turn.
type DomainDirectory interface {
	FindDeal(ctx context.Context, orgID, dealID string) (*DealRecord, error)
	FindListing(ctx context.Context, orgID, listingID string) (*ListingRecord, error)
	FindProspect(ctx context.Context, orgID, prospectID string) (*ProspectRecord, error)
}
