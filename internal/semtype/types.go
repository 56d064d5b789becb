// Package semtype holds the custom semantic type model and the registry that
// stores user-defined types. A semantic type is either a finite (list) plugin,
// matched by an enumerated value set, or a regex plugin, matched by one or
// more patterns; both may carry header regexps applied to column names.
package semtype

import "time"

// Plugin type discriminators.
const (
	PluginList  = "list"
	PluginRegex = "regex"
)

// CustomSemanticType is one detection rule in the registry.
type CustomSemanticType struct {
	SemanticType string         `json:"semanticType"`
	Description  string         `json:"description,omitempty"`
	PluginType   string         `json:"pluginType"`
	BaseType     string         `json:"baseType"`
	Threshold    int            `json:"threshold"`
	Priority     int            `json:"priority,omitempty"`
	Content      *ContentConfig `json:"content,omitempty"`
	ValidLocales []LocaleConfig `json:"validLocales,omitempty"`
	IsBuiltIn    bool           `json:"isBuiltIn"`
	CreatedAt    int64          `json:"createdAt,omitempty"`
}

// ContentConfig holds the enumerated members of a finite plugin.
type ContentConfig struct {
	Type   string   `json:"type"` // "inline"
	Values []string `json:"values"`
}

// LocaleConfig scopes header regexps and match entries to a locale tag.
// "*" applies everywhere.
type LocaleConfig struct {
	LocaleTag     string         `json:"localeTag"`
	HeaderRegExps []HeaderRegExp `json:"headerRegExps,omitempty"`
	MatchEntries  []MatchEntry   `json:"matchEntries,omitempty"`
}

// HeaderRegExp is a column-header pattern with a confidence percentage.
// Negative confidence marks a guard: a header matching it must not get the type.
type HeaderRegExp struct {
	RegExp     string `json:"regExp"`
	Confidence int    `json:"confidence"`
	Mandatory  bool   `json:"mandatory"`
}

// MatchEntry is one value pattern of a regex plugin.
type MatchEntry struct {
	RegExpReturned   string `json:"regExpReturned"`
	IsRegExpComplete bool   `json:"isRegExpComplete"`
	Description      string `json:"description,omitempty"`
}

// NewListType builds a finite plugin over the given canonical members.
func NewListType(name, description string, members []string, threshold, priority int) *CustomSemanticType {
	return &CustomSemanticType{
		SemanticType: name,
		Description:  description,
		PluginType:   PluginList,
		BaseType:     "STRING",
		Threshold:    threshold,
		Priority:     priority,
		Content:      &ContentConfig{Type: "inline", Values: members},
		ValidLocales: []LocaleConfig{{LocaleTag: "*"}},
		CreatedAt:    time.Now().UnixMilli(),
	}
}

// NewRegexType builds a regex plugin over the given patterns.
func NewRegexType(name, description string, patterns []string, threshold, priority int) *CustomSemanticType {
	entries := make([]MatchEntry, 0, len(patterns))
	for _, p := range patterns {
		entries = append(entries, MatchEntry{RegExpReturned: p, IsRegExpComplete: true})
	}
	return &CustomSemanticType{
		SemanticType: name,
		Description:  description,
		PluginType:   PluginRegex,
		BaseType:     "STRING",
		Threshold:    threshold,
		Priority:     priority,
		ValidLocales: []LocaleConfig{{LocaleTag: "*", MatchEntries: entries}},
		CreatedAt:    time.Now().UnixMilli(),
	}
}

// Members returns the finite member list, or nil for non-list plugins.
func (t *CustomSemanticType) Members() []string {
	if t.Content == nil {
		return nil
	}
	return t.Content.Values
}

// SetMembers replaces the finite member list.
func (t *CustomSemanticType) SetMembers(members []string) {
	t.Content = &ContentConfig{Type: "inline", Values: members}
}

// Patterns returns every value regexp across locales.
func (t *CustomSemanticType) Patterns() []string {
	var out []string
	for _, locale := range t.ValidLocales {
		for _, entry := range locale.MatchEntries {
			if entry.RegExpReturned != "" {
				out = append(out, entry.RegExpReturned)
			}
		}
	}
	return out
}

// HeaderPatterns returns every header regexp across locales.
func (t *CustomSemanticType) HeaderPatterns() []HeaderRegExp {
	var out []HeaderRegExp
	for _, locale := range t.ValidLocales {
		out = append(out, locale.HeaderRegExps...)
	}
	return out
}

// SetHeaderPatterns replaces the header regexps on the primary locale.
func (t *CustomSemanticType) SetHeaderPatterns(patterns []HeaderRegExp) {
	if len(t.ValidLocales) == 0 {
		t.ValidLocales = []LocaleConfig{{LocaleTag: "*"}}
	}
	t.ValidLocales[0].HeaderRegExps = patterns
}
