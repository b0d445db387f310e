// Package domain contains entity types without logic, just meta-data.
package domain

// Card is an opaque caller-defined record. Only "id" and the embedded
// "user" snapshot mean anything to the relay; every other field rides
// along verbatim.
type Card map[string]any

// ID returns the caller-supplied card id, or "" when absent.
// Ids are not unique within a room; duplicates are allowed on add.
func (c Card) ID() string {
	id, _ := c["id"].(string)
	return id
}

// User returns the embedded user snapshot, or nil when the card
// carries none.
func (c Card) User() User {
	switch u := c["user"].(type) {
	case map[string]any:
		return User(u)
	case User:
		return u
	}
	return nil
}

// SetUser replaces the embedded user snapshot in place.
func (c Card) SetUser(u User) {
	c["user"] = map[string]any(u)
}

// ColumnID returns the column the card is tagged with, or "".
func (c Card) ColumnID() string {
	id, _ := c["columnId"].(string)
	return id
}

// SetColumn retags the card with a column object.
func (c Card) SetColumn(column any) {
	c["column"] = column
}

// ClearColumn drops the column tag.
func (c Card) ClearColumn() {
	delete(c, "column")
}
