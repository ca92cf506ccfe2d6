package domain

// SourceEntry is a single named text document.
// Path is unique only within the collection that owns it.
type SourceEntry struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// SourceCollection is an ordered sequence of entries.
// Insertion order is significant and duplicated paths are kept side by side.
type SourceCollection struct {
	entries []SourceEntry
}

// NewSourceCollection builds a collection from the given entries, in order.
func NewSourceCollection(entries ...SourceEntry) SourceCollection {
	c := SourceCollection{entries: make([]SourceEntry, 0, len(entries))}
	c.entries = append(c.entries, entries...)
	return c
}

// Concat returns a new collection holding every entry of a followed by every entry of b.
func Concat(a, b SourceCollection) SourceCollection {
	out := SourceCollection{entries: make([]SourceEntry, 0, a.Len()+b.Len())}
	out.entries = append(out.entries, a.entries...)
	out.entries = append(out.entries, b.entries...)
	return out
}

// Append adds entries to the end of the collection.
func (c *SourceCollection) Append(entries ...SourceEntry) {
	c.entries = append(c.entries, entries...)
}

// Len returns the number of entries.
func (c SourceCollection) Len() int { return len(c.entries) }

// Entries returns a copy of the entries in order.
func (c SourceCollection) Entries() []SourceEntry {
	out := make([]SourceEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Clone returns an independent copy.
func (c SourceCollection) Clone() SourceCollection {
	return NewSourceCollection(c.entries...)
}

// Paths returns the paths, parallel to Contents.
func (c SourceCollection) Paths() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Path
	}
	return out
}

// Contents returns the document texts, parallel to Paths.
func (c SourceCollection) Contents() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Content
	}
	return out
}
