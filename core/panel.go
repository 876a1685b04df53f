package core

// PanelField is one ordered label/value row of a context panel.
type PanelField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PanelDocument references a document associated with the anchored entity.
type PanelDocument struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// ContextPanel is a display-ready read model summarizing the entity a session
// is anchored to. It is recomputed per request and never persisted by the
// orchestration layer except as a session fallback snapshot.
type ContextPanel struct {
	Title     string          `json:"title"`
	Subtitle  string          `json:"subtitle,omitempty"`
	Link      string          `json:"link,omitempty"`
	Fields    []PanelField    `json:"fields,omitempty"`
	Documents []PanelDocument `json:"documents,omitempty"`
}

// Field returns the value of the first field with the given label.
func (p *ContextPanel) Field(label string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, f := range p.Fields {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the panel.
func (p *ContextPanel) Clone() *ContextPanel {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Fields = make([]PanelField, len(p.Fields))
	copy(clone.Fields, p.Fields)
	clone.Documents = make([]PanelDocument, len(p.Documents))
	copy(clone.Documents, p.Documents)
	return &clone
}
