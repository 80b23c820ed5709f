package widget

// DefaultMaxLines caps text buffers when a definition sets no limit
const DefaultMaxLines = 1000

// Definition is the static configuration of one widget
type Definition struct {
	Name        string          `yaml:"name" json:"name"`
	Kind        Kind            `yaml:"kind" json:"kind"`
	Streams     []string        `yaml:"streams,omitempty" json:"streams,omitempty"`
	Tabs        []TabDefinition `yaml:"tabs,omitempty" json:"tabs,omitempty"`
	ProgressID  string          `yaml:"progress_id,omitempty" json:"progress_id,omitempty"`
	CountdownID string          `yaml:"countdown_id,omitempty" json:"countdown_id,omitempty"`
	IndicatorID string          `yaml:"indicator_id,omitempty" json:"indicator_id,omitempty"`
	Category    string          `yaml:"category,omitempty" json:"category,omitempty"`
	Slot        string          `yaml:"slot,omitempty" json:"slot,omitempty"`
	Roster      string          `yaml:"roster,omitempty" json:"roster,omitempty"`
	MaxLines    int             `yaml:"max_lines,omitempty" json:"max_lines,omitempty"`
}

// TabDefinition binds streams to one tab of a tabbed widget
type TabDefinition struct {
	Name           string   `yaml:"name" json:"name"`
	Streams        []string `yaml:"streams" json:"streams"`
	IgnoreActivity bool     `yaml:"ignore_activity,omitempty" json:"ignore_activity,omitempty"`
}

func (d Definition) maxLines() int {
	if d.MaxLines <= 0 {
		return DefaultMaxLines
	}
	return d.MaxLines
}
