// Package executor submits planned actions to the external execution engine
// and guarantees the caller always gets exactly one result per planned
// action: genuine per-action statuses when the submission succeeds, or
// synthesized uniform failures when it does not. An empty plan short-circuits
// without touching the engine at all.
package executor

import (
	"context"
	"time"

	"github.com/brokermesh/assistant/catalog"
	"github.com/brokermesh/assistant/core"
	"github.com/brokermesh/assistant/logging"
)

// Options configures an Executor.
type Options struct {
	Logger logging.Logger
}

// Executor drives the action-execution engine for one turn at a time.
type Executor struct {
	engine core.ActionEngine
	logger logging.Logger
}

// New constructs an Executor around an engine.
func New(engine core.ActionEngine, optFns ...func(o *Options)) *Executor {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{engine: engine, logger: opts.Logger}
}

// BuildPayload derives the execution payload for a turn from the grounding
// results: the first-seen prospect/listing/deal/lease identifiers among the
// top search hits, plus the raw message text as the prompt.
func BuildPayload(messageText string, hits []core.SearchResult) map[string]any {
	payload := map[string]any{"prompt": messageText}
	for _, hit := range hits {
		switch hit.Type {
		case "prospect", "listing", "deal", "lease":
			key := hit.Type + "_id"
			if _, seen := payload[key]; !seen {
				payload[key] = hit.ID
			}
		}
	}
	return payload
}

// Execute submits the planned actions plus payload to the engine in a single
// call. An empty plan returns an empty result list without invoking the
// engine. When the submission itself fails, one failed result per planned
// action is synthesized, positionally aligned and each carrying the failure
// message, so callers can still zip results back to their plan.
func (e *Executor) Execute(ctx context.Context, orgID string, plan []core.PlannedAction, payload map[string]any) []core.ActionExecutionResult {
	if len(plan) == 0 {
		return []core.ActionExecutionResult{}
	}

	for _, action := range plan {
		if entry, ok := catalog.Lookup(action.Type); ok {
			if missing := entry.MissingParams(action.Params); len(missing) > 0 {
				e.logger.Warn("action %s submitted without required params %v", action.Type, missing)
			}
		}
	}

	started := time.Now()
	results, err := e.engine.ExecuteActions(ctx, orgID, plan, payload)
	if err != nil {
		e.logger.Warn("action engine submission failed after %s: %v", time.Since(started), err)
		failed := make([]core.ActionExecutionResult, len(plan))
		for i, action := range plan {
			failed[i] = core.ActionExecutionResult{
				Type:   action.Type,
				Params: action.Params,
				Status: core.StatusFailed,
				Error:  err.Error(),
			}
		}
		return failed
	}

	e.logger.Debug("action engine executed %d actions in %s", len(results), time.Since(started))
	return results
}
