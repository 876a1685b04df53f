package grounding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokermesh/assistant/core"
	"github.com/brokermesh/assistant/internal/testutil"
	"github.com/brokermesh/assistant/persona"
)

func TestGather_SearchFailureDegrades(t *testing.T) {
	search := &testutil.FakeSearch{Err: errors.New("search down")}
	g := New(search, &testutil.FakeTimelines{}, persona.NewMock())

	panel := &core.ContextPanel{Title: "Deal: 12 Harbor St"}
	result := g.Gather(context.Background(), "org-1", "user-1", "hello", panel)

	require.NotNil(t, result)
	assert.Same(t, panel, result.ContextPanel)
	assert.NotEmpty(t, result.ActionCatalog)
	assert.Empty(t, result.SearchResults)
	assert.Empty(t, result.Timelines)
	assert.Nil(t, result.DealOpinion)
	assert.Nil(t, result.NurtureOpinion)
}

func TestGather_TopResultsCapped(t *testing.T) {
	var hits []core.SearchResult
	for i := 0; i < 9; i++ {
		hits = append(hits, core.SearchResult{ID: "n", Type: "note"})
	}
	g := New(&testutil.FakeSearch{Results: hits}, nil, nil)

	result := g.Gather(context.Background(), "org-1", "user-1", "anything", nil)

	assert.Len(t, result.SearchResults, 5)
}

func TestGather_TimelinesForWhitelistedTypesOnly(t *testing.T) {
	search := &testutil.FakeSearch{Results: []core.SearchResult{
		{ID: "d-1", Type: "deal"},
		{ID: "n-1", Type: "note"},
		{ID: "p-1", Type: "prospect"},
	}}
	timelines := &testutil.FakeTimelines{Timelines: map[string]*core.EntityTimeline{
		"deal/d-1":     {EntityType: "deal", EntityID: "d-1"},
		"prospect/p-1": {EntityType: "prospect", EntityID: "p-1"},
	}}
	g := New(search, timelines, nil)

	result := g.Gather(context.Background(), "org-1", "user-1", "anything", nil)

	assert.Len(t, result.Timelines, 2)
	assert.ElementsMatch(t, []string{"deal/d-1", "prospect/p-1"}, timelines.Fetched)
}

func TestGather_TimelineFailureIsolated(t *testing.T) {
	search := &testutil.FakeSearch{Results: []core.SearchResult{
		{ID: "d-1", Type: "deal"},
		{ID: "l-1", Type: "listing"},
	}}
	timelines := &testutil.FakeTimelines{
		Timelines: map[string]*core.EntityTimeline{
			"listing/l-1": {EntityType: "listing", EntityID: "l-1"},
		},
		Errs: map[string]error{"deal/d-1": errors.New("timeline down")},
	}
	g := New(search, timelines, nil)

	result := g.Gather(context.Background(), "org-1", "user-1", "anything", nil)

	require.Len(t, result.Timelines, 1)
	assert.Equal(t, "l-1", result.Timelines[0].EntityID)
}

func TestGather_DealSpecialistTriggered(t *testing.T) {
	search := &testutil.FakeSearch{Results: []core.SearchResult{{ID: "d-1", Type: "deal"}}}
	mock := persona.NewMock()
	mock.SetOutput(core.PersonaDealCoordinator, &core.PersonaOutput{RawText: "inspection pending"})
	g := New(search, nil, mock)

	result := g.Gather(context.Background(), "org-1", "user-1", "what's the status", nil)

	require.NotNil(t, result.DealOpinion)
	assert.Equal(t, "inspection pending", result.DealOpinion.RawText)

	calls := mock.CallsFor(core.PersonaDealCoordinator)
	require.Len(t, calls, 1)
	assert.Equal(t, "d-1", calls[0].Input.AnchorID)
}

func TestGather_NurtureSpecialistNeedsFollowUpIntent(t *testing.T) {
	search := &testutil.FakeSearch{Results: []core.SearchResult{{ID: "p-1", Type: "prospect"}}}

	mock := persona.NewMock()
	g := New(search, nil, mock)
	g.Gather(context.Background(), "org-1", "user-1", "what's their budget", nil)
	assert.Empty(t, mock.CallsFor(core.PersonaNurtureDraft))

	mock = persona.NewMock()
	mock.SetOutput(core.PersonaNurtureDraft, &core.PersonaOutput{RawText: "draft: checking in"})
	g = New(search, nil, mock)
	result := g.Gather(context.Background(), "org-1", "user-1", "Can you follow up with this lead by email", nil)

	require.Len(t, mock.CallsFor(core.PersonaNurtureDraft), 1)
	require.NotNil(t, result.NurtureOpinion)
	assert.Equal(t, "draft: checking in", result.NurtureOpinion.RawText)
}

func TestGather_SpecialistFailureIsolated(t *testing.T) {
	search := &testutil.FakeSearch{Results: []core.SearchResult{
		{ID: "d-1", Type: "deal"},
		{ID: "p-1", Type: "prospect"},
	}}
	mock := persona.NewMock()
	mock.SetError(core.PersonaDealCoordinator, errors.New("persona down"))
	mock.SetOutput(core.PersonaNurtureDraft, &core.PersonaOutput{RawText: "draft"})
	g := New(search, nil, mock)

	result := g.Gather(context.Background(), "org-1", "user-1", "please touch base with them", nil)

	assert.Nil(t, result.DealOpinion)
	require.NotNil(t, result.NurtureOpinion)
	assert.Len(t, result.SearchResults, 2)
}

func TestHasFollowUpIntent(t *testing.T) {
	assert.True(t, HasFollowUpIntent("can you follow up with this lead by email"))
	assert.True(t, HasFollowUpIntent("TOUCH BASE with them tomorrow"))
	assert.True(t, HasFollowUpIntent("schedule a check-in"))
	assert.False(t, HasFollowUpIntent("what's the asking price"))
	assert.False(t, HasFollowUpIntent(""))
}
