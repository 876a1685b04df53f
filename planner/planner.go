// Package planner turns the loosely-typed persona output envelope into
// normalized planned actions and a reply string. The persona capability is
// opaque: it may put candidate actions and the reply text under any of a
// small fixed set of field names. All envelope inspection is concentrated
// here so the collaborator boundary stays narrow; nothing else in the module
// reads envelope internals.
package planner

import (
	"github.com/brokermesh/assistant/catalog"
	"github.com/brokermesh/assistant/core"
)

// typeKeys are the candidate field names probed, in order, for an action's
// type-like value.
var typeKeys = []string{"tool", "action_type", "type"}

// paramKeys are the candidate field names probed, in order, for an action's
// parameter object.
var paramKeys = []string{"params", "parameters", "arguments"}

// summaryKeys are the candidate field names probed, in order, for an action's
// human summary.
var summaryKeys = []string{"summary", "description"}

// replyKeys are the candidate structured field names probed, in order, for
// the reply text when RawText is empty.
var replyKeys = []string{"reply", "response", "text", "message"}

// Plan extracts normalized planned actions from a persona output. Candidates
// with an unrecognized type are dropped silently: one bad suggestion never
// errors the whole plan. Output order matches candidate order so execution
// results can be zipped back positionally.
func Plan(out *core.PersonaOutput) []core.PlannedAction {
	if out == nil {
		return nil
	}

	var planned []core.PlannedAction
	for _, candidate := range candidates(out) {
		id, ok := normalizeType(candidate)
		if !ok {
			continue
		}
		planned = append(planned, core.PlannedAction{
			Type:    id,
			Params:  paramsOf(candidate),
			Summary: summaryOf(candidate),
		})
	}
	return planned
}

// candidates returns the action candidate list, preferring the top-level
// Actions field and falling back to a nested "actions" list inside the
// structured payload when the primary is empty.
func candidates(out *core.PersonaOutput) []map[string]any {
	if len(out.Actions) > 0 {
		return out.Actions
	}
	nested, ok := out.Structured["actions"].([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(nested))
	for _, item := range nested {
		if m, ok := item.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

func normalizeType(candidate map[string]any) (string, bool) {
	for _, key := range typeKeys {
		raw, ok := candidate[key].(string)
		if !ok || raw == "" {
			continue
		}
		return catalog.Normalize(raw)
	}
	return "", false
}

func paramsOf(candidate map[string]any) map[string]any {
	for _, key := range paramKeys {
		if params, ok := candidate[key].(map[string]any); ok {
			return params
		}
	}
	return map[string]any{}
}

func summaryOf(candidate map[string]any) string {
	for _, key := range summaryKeys {
		if s, ok := candidate[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// ReplyText extracts the conversational reply from a persona output by
// applying an ordered list of extraction rules and returning the first
// non-empty match. The boolean reports whether anything usable was found;
// the caller supplies its own fallback string otherwise.
func ReplyText(out *core.PersonaOutput) (string, bool) {
	if out == nil {
		return "", false
	}
	if out.RawText != "" {
		return out.RawText, true
	}
	for _, key := range replyKeys {
		if s, ok := out.Structured[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}
