package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextKeyFor_None(t *testing.T) {
	key, err := ContextKeyFor(VariantNone, "")
	require.NoError(t, err)
	assert.Equal(t, "NONE", key)

	// Empty variant is treated as NONE, anchor id is ignored.
	key, err = ContextKeyFor("", "deal-42")
	require.NoError(t, err)
	assert.Equal(t, "NONE", key)
}

func TestContextKeyFor_Anchored(t *testing.T) {
	key, err := ContextKeyFor(VariantDeal, "deal-42")
	require.NoError(t, err)
	assert.Equal(t, "DEAL:deal-42", key)

	// Deterministic: same inputs, same key.
	again, err := ContextKeyFor(VariantDeal, "deal-42")
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestContextKeyFor_AnchoredWithoutAnchorFails(t *testing.T) {
	for _, variant := range []ContextVariant{VariantProspect, VariantListing, VariantDeal} {
		_, err := ContextKeyFor(variant, "")
		assert.Error(t, err, "variant %s", variant)
	}
}

func TestContextKeyFor_UnknownVariant(t *testing.T) {
	_, err := ContextKeyFor("TENANT", "t-1")
	assert.Error(t, err)
}

func TestNewLegacyContextKey_Unique(t *testing.T) {
	assert.NotEqual(t, NewLegacyContextKey(), NewLegacyContextKey())
}

func TestMissingParams(t *testing.T) {
	entry := ActionCatalogEntry{ID: "CREATE_TASK", Required: []string{"assignee", "title"}}

	assert.Equal(t, []string{"assignee", "title"}, entry.MissingParams(nil))
	assert.Equal(t, []string{"title"}, entry.MissingParams(map[string]any{"assignee": "kim"}))
	assert.Empty(t, entry.MissingParams(map[string]any{"assignee": "kim", "title": "call back"}))

	// A nil value still counts as missing.
	assert.Equal(t, []string{"title"}, entry.MissingParams(map[string]any{"assignee": "kim", "title": nil}))
}
