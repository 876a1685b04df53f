// Package testutil contains in-memory fakes for the collaborator interfaces
// used across package tests. The fakes record their invocations so tests can
// assert on call shapes without reaching for a mocking framework. They are
// not intended for production usage.
package testutil

import (
	"context"
	"sync"

	"github.com/brokermesh/assistant/core"
)

// FakeSearch is a canned core.SearchClient.
type FakeSearch struct {
	Results []core.SearchResult
	Err     error

	mu      sync.Mutex
	Queries []string
}

// Search implements core.SearchClient.
func (f *FakeSearch) Search(_ context.Context, _ string, query string) ([]core.SearchResult, error) {
	f.mu.Lock()
	f.Queries = append(f.Queries, query)
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Results, nil
}

// FakeTimelines is a canned core.TimelineClient keyed by "type/id".
type FakeTimelines struct {
	Timelines map[string]*core.EntityTimeline
	Errs      map[string]error

	mu      sync.Mutex
	Fetched []string
}

// Timeline implements core.TimelineClient.
func (f *FakeTimelines) Timeline(_ context.Context, _ string, entityType, entityID string) (*core.EntityTimeline, error) {
	key := entityType + "/" + entityID
	f.mu.Lock()
	f.Fetched = append(f.Fetched, key)
	f.mu.Unlock()
	if err := f.Errs[key]; err != nil {
		return nil, err
	}
	if tl, ok := f.Timelines[key]; ok {
		return tl, nil
	}
	return &core.EntityTimeline{EntityType: entityType, EntityID: entityID}, nil
}

// EngineCall records one submission to a FakeEngine.
type EngineCall struct {
	OrgID   string
	Actions []core.PlannedAction
	Payload map[string]any
}

// FakeEngine is a canned core.ActionEngine.
type FakeEngine struct {
	Results []core.ActionExecutionResult
	Err     error

	mu    sync.Mutex
	Calls []EngineCall
}

// ExecuteActions implements core.ActionEngine.
func (f *FakeEngine) ExecuteActions(_ context.Context, orgID string, actions []core.PlannedAction, payload map[string]any) ([]core.ActionExecutionResult, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, EngineCall{OrgID: orgID, Actions: actions, Payload: payload})
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Results != nil {
		return f.Results, nil
	}
	results := make([]core.ActionExecutionResult, len(actions))
	for i, a := range actions {
		results[i] = core.ActionExecutionResult{Type: a.Type, Params: a.Params, Status: core.StatusExecuted}
	}
	return results, nil
}

// CallCount returns how many times the engine was invoked.
func (f *FakeEngine) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// FakeDirectory is a canned core.DomainDirectory keyed by entity id.
type FakeDirectory struct {
	Deals     map[string]*core.DealRecord
	Listings  map[string]*core.ListingRecord
	Prospects map[string]*core.ProspectRecord
	Err       error
}

// FindDeal implements core.DomainDirectory.
func (f *FakeDirectory) FindDeal(_ context.Context, _ string, dealID string) (*core.DealRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Deals[dealID], nil
}

// FindListing implements core.DomainDirectory.
func (f *FakeDirectory) FindListing(_ context.Context, _ string, listingID string) (*core.ListingRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Listings[listingID], nil
}

// FindProspect implements core.DomainDirectory.
func (f *FakeDirectory) FindProspect(_ context.Context, _ string, prospectID string) (*core.ProspectRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Prospects[prospectID], nil
}
