package model

// UntitledPlaceholder is rendered in place of an absent theme title.
const UntitledPlaceholder = "(untitled)"

// Theme is an educational content record stored under themes/{key}.
type Theme struct {
	Key      string
	Title    *string
	Theory   *string
	Examples *string
}

// DisplayTitle returns the title or the placeholder when it is absent.
func (t Theme) DisplayTitle() string {
	if t.Title == nil {
		return UntitledPlaceholder
	}
	return *t.Title
}

// ThemeFromDocument decodes a document. Missing fields map to nil.
func ThemeFromDocument(doc Document) Theme {
	return Theme{
		Key:      doc.Key,
		Title:    StringField(doc.Fields, "title"),
		Theory:   StringField(doc.Fields, "theory"),
		Examples: StringField(doc.Fields, "examples"),
	}
}

// ThemeInput carries the editable fields of a theme.
type ThemeInput struct {
	Title    string
	Theory   string
	Examples string
}

// Fields returns the persisted representation of the input.
func (in ThemeInput) Fields() map[string]any {
	return map[string]any{
		"title":    in.Title,
		"theory":   in.Theory,
		"examples": in.Examples,
	}
}
