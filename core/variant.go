package core

import "fmt"

// ContextVariant identifies which kind of business entity a session is
// anchored to. The set is closed; code switching over variants should handle
// every constant plus a default branch for forward compatibility.
type ContextVariant string

const (
	// VariantNone marks an unanchored, general-purpose session.
	VariantNone ContextVariant = "NONE"
	// VariantProspect anchors a session to a prospect (lead).
	VariantProspect ContextVariant = "PROSPECT"
	// VariantListing anchors a session to a property listing.
	VariantListing ContextVariant = "LISTING"
	// VariantDeal anchors a session to an in-flight deal.
	VariantDeal ContextVariant = "DEAL"
)

// Anchored reports whether the variant requires an anchor entity id.
func (v ContextVariant) Anchored() bool {
	switch v {
	case VariantProspect, VariantListing, VariantDeal:
		return true
	default:
		return false
	}
}

// Valid reports whether v is one of the known variants (empty counts as
// VariantNone for legacy rows).
func (v ContextVariant) Valid() bool {
	switch v {
	case "", VariantNone, VariantProspect, VariantListing, VariantDeal:
		return true
	default:
		return false
	}
}

// ContextKeyFor derives the deterministic session context key for a
// (variant, anchor) pair: "NONE" for unanchored sessions, "<VARIANT>:<id>"
// otherwise. An anchored variant without an anchor id is a contract
// violation and yields an error rather than a silent default.
func ContextKeyFor(variant ContextVariant, anchorID string) (string, error) {
	if variant == "" {
		variant = VariantNone
	}
	if !variant.Valid() {
		return "", fmt.Errorf("unknown context variant %q", variant)
	}
	if !variant.Anchored() {
		return string(VariantNone), nil
	}
	if anchorID == "" {
		return "", fmt.Errorf("context variant %s requires an anchor id", variant)
	}
	return fmt.Sprintf("%s:%s", variant, anchorID), nil
}

// NewLegacyContextKey returns a random unique key for legacy sessions created
// before context anchoring existed. Each call yields a fresh key so legacy
// sessions never collide on upsert.
func NewLegacyContextKey() string {
	return "LEGACY:" + NewID()
}
