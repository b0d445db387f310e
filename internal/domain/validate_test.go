package domain

import "testing"

func TestValidRoomKey(t *testing.T) {
	if ValidRoomKey("") {
		t.Error("empty key should be invalid")
	}
	if !ValidRoomKey("R1") {
		t.Error("non-empty key should be valid")
	}
}

func TestValidCard(t *testing.T) {
	if ValidCard(nil) {
		t.Error("nil card should be invalid")
	}
	if !ValidCard(Card{}) {
		t.Error("empty object should be valid")
	}
}

func TestValidUser(t *testing.T) {
	if ValidUser(nil) {
		t.Error("nil user should be invalid")
	}
	if !ValidUser(User{"name": "Alice"}) {
		t.Error("object should be valid")
	}
}

func TestCardAccessors(t *testing.T) {
	c := Card{
		"id":       "c1",
		"columnId": "col1",
		"user":     map[string]any{"name": "Alice", "avatar": "a.png"},
		"text":     "hello",
	}

	if c.ID() != "c1" {
		t.Errorf("ID: got %q", c.ID())
	}
	if c.ColumnID() != "col1" {
		t.Errorf("ColumnID: got %q", c.ColumnID())
	}
	if c.User().Name() != "Alice" {
		t.Errorf("User name: got %q", c.User().Name())
	}

	c.SetUser(User{"name": "Alice", "avatar": "b.png"})
	if c.User()["avatar"] != "b.png" {
		t.Error("SetUser should replace the embedded snapshot")
	}
	// arbitrary payload fields ride along untouched
	if c["text"] != "hello" {
		t.Error("payload field lost")
	}

	c.SetColumn(map[string]any{"id": "col1", "title": "Done"})
	if c["column"] == nil {
		t.Error("SetColumn should tag the card")
	}
	c.ClearColumn()
	if _, ok := c["column"]; ok {
		t.Error("ClearColumn should drop the tag")
	}
}

func TestCardMissingFields(t *testing.T) {
	c := Card{}
	if c.ID() != "" {
		t.Error("missing id should read as empty")
	}
	if c.User() != nil {
		t.Error("missing user should read as nil")
	}
	if c.User().Name() != "" {
		t.Error("nil user name should read as empty")
	}
}
