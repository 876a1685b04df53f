// Package catalog holds the fixed registry of supported action types and the
// normalizer that resolves arbitrary caller- or model-supplied labels to
// canonical catalog ids. The registry is immutable: it is declared once at
// package level and only ever read through copying accessors, so there is no
// runtime mutation to guard.
package catalog

import (
	"strings"
	"sync"

	"github.com/brokermesh/assistant/core"
)

// Canonical action type ids.
const (
	ActionCreateTask      = "CREATE_TASK"
	ActionSendEmail       = "SEND_EMAIL"
	ActionScheduleShowing = "SCHEDULE_SHOWING"
	ActionUpdateDealStage = "UPDATE_DEAL_STAGE"
	ActionFlagForReview   = "FLAG_FOR_REVIEW"
	ActionAddNote         = "ADD_NOTE"
	ActionDraftFollowUp   = "DRAFT_FOLLOW_UP"
)

var entries = []core.ActionCatalogEntry{
	{
		ID:          ActionCreateTask,
		Description: "Create a follow-up task assigned to a team member.",
		Required:    []string{"assignee", "title"},
		Optional:    []string{"due_date", "deal_id"},
	},
	{
		ID:          ActionSendEmail,
		Description: "Send an email on behalf of the current user.",
		Required:    []string{"to", "subject", "body"},
		Optional:    []string{"prospect_id"},
	},
	{
		ID:          ActionScheduleShowing,
		Description: "Schedule a property showing for a listing.",
		Required:    []string{"listing_id", "datetime"},
		Optional:    []string{"prospect_id", "notes"},
	},
	{
		ID:          ActionUpdateDealStage,
		Description: "Move a deal to a different pipeline stage.",
		Required:    []string{"deal_id", "stage"},
	},
	{
		ID:          ActionFlagForReview,
		Description: "Flag an entity for compliance review.",
		Optional:    []string{"deal_id", "listing_id", "prospect_id", "reason"},
	},
	{
		ID:          ActionAddNote,
		Description: "Attach a note to a deal, listing, or prospect.",
		Required:    []string{"body"},
		Optional:    []string{"deal_id", "listing_id", "prospect_id"},
	},
	{
		ID:          ActionDraftFollowUp,
		Description: "Draft a follow-up message for a prospect without sending it.",
		Required:    []string{"prospect_id"},
		Optional:    []string{"channel", "tone"},
	},
}

// Entries returns a copy of the full catalog in declaration order.
func Entries() []core.ActionCatalogEntry {
	out := make([]core.ActionCatalogEntry, len(entries))
	copy(out, entries)
	return out
}

// Describe renders the catalog as a prompt-ready capability list, one line
// per action with its required and optional parameter names.
func Describe() string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString("- ")
		b.WriteString(e.ID)
		b.WriteString(": ")
		b.WriteString(e.Description)
		if len(e.Required) > 0 {
			b.WriteString(" Required: ")
			b.WriteString(strings.Join(e.Required, ", "))
			b.WriteString(".")
		}
		if len(e.Optional) > 0 {
			b.WriteString(" Optional: ")
			b.WriteString(strings.Join(e.Optional, ", "))
			b.WriteString(".")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Lookup returns the catalog entry for a canonical id.
func Lookup(id string) (core.ActionCatalogEntry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return core.ActionCatalogEntry{}, false
}

// index maps every accepted spelling of a canonical id (verbatim, lower-cased,
// and squashed) back to the canonical form. Built once, lazily.
var (
	indexOnce sync.Once
	index     map[string]string
)

func buildIndex() {
	index = make(map[string]string, len(entries)*3)
	for _, e := range entries {
		index[e.ID] = e.ID
		index[strings.ToLower(e.ID)] = e.ID
		index[squash(e.ID)] = e.ID
	}
}

// squash lower-cases the label and strips separator characters so spellings
// like "Create Task" and "create-task" collapse to "createtask".
func squash(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range strings.ToLower(label) {
		switch r {
		case '_', '-', ' ', '\t':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize resolves a raw action label to its canonical catalog id. The
// label is probed verbatim, lower-cased, then squashed, returning the first
// hit. Unrecognized labels yield ("", false); there is no edit-distance
// matching, keeping false positives out of the execution path.
func Normalize(raw string) (string, bool) {
	indexOnce.Do(buildIndex)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, probe := range []string{raw, strings.ToLower(raw), squash(raw)} {
		if id, ok := index[probe]; ok {
			return id, true
		}
	}
	return "", false
}
