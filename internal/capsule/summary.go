package capsule

// DescriptionMaxChars bounds the derived index description (in runes).
const DescriptionMaxChars = 150

// IndexEntry is the summary projection of a Capsule used for listing
// without loading full documents.
type IndexEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	Level       string `json:"level"`
	Description string `json:"description"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// IndexPatch carries the fields to merge into an index entry.
// Nil fields leave the existing value untouched.
type IndexPatch struct {
	ID          string
	Title       *string
	Subject     *string
	Level       *string
	Description *string
	UpdatedAt   *int64
}

// Apply merges the patch into e.
func (p IndexPatch) Apply(e *IndexEntry) {
	e.ID = p.ID
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Subject != nil {
		e.Subject = *p.Subject
	}
	if p.Level != nil {
		e.Level = *p.Level
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.UpdatedAt != nil {
		e.UpdatedAt = *p.UpdatedAt
	}
}

// Describe derives the index description: the first note, else the first
// flashcard front, else the first quiz question, truncated to DescriptionMaxChars.
func (c *Capsule) Describe() string {
	var desc string
	switch {
	case len(c.Notes) > 0 && c.Notes[0] != "":
		desc = c.Notes[0]
	case len(c.Flashcards) > 0 && c.Flashcards[0].Front != "":
		desc = c.Flashcards[0].Front
	case len(c.Quiz) > 0:
		desc = c.Quiz[0].Question
	}
	return Truncate(desc, DescriptionMaxChars)
}

// ToIndexEntry converts a Capsule to its IndexEntry.
func (c *Capsule) ToIndexEntry() IndexEntry {
	return IndexEntry{
		ID:          c.ID,
		Title:       c.Title,
		Subject:     c.Subject,
		Level:       c.Level,
		Description: c.Describe(),
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToIndexPatch returns a patch setting every summary field of the capsule.
func (c *Capsule) ToIndexPatch() IndexPatch {
	e := c.ToIndexEntry()
	return IndexPatch{
		ID:          e.ID,
		Title:       &e.Title,
		Subject:     &e.Subject,
		Level:       &e.Level,
		Description: &e.Description,
		UpdatedAt:   &e.UpdatedAt,
	}
}
