package app

import (
	"sync"
	"testing"

	"github.com/retroboard/relay/internal/domain"
)

func card(id, name string, extra map[string]any) domain.Card {
	c := domain.Card{"id": id, "user": map[string]any{"name": name}}
	for k, v := range extra {
		c[k] = v
	}
	return c
}

func TestEnsureRoomIdempotent(t *testing.T) {
	s := NewStore()
	s.EnsureRoom("R1")
	s.AddCard("R1", card("c1", "Alice", nil))
	s.EnsureRoom("R1")

	if got := len(s.Cards("R1")); got != 1 {
		t.Errorf("expected 1 card after re-ensure, got %d", got)
	}
}

func TestCardsOnMissingRoom(t *testing.T) {
	s := NewStore()
	if got := s.Cards("nope"); len(got) != 0 {
		t.Errorf("missing room should yield empty sequence, got %d", len(got))
	}
	if len(s.Keys()) != 0 {
		t.Error("Cards must not create rooms as a side effect")
	}
}

func TestAddCardAllowsDuplicateIDs(t *testing.T) {
	s := NewStore()
	s.AddCard("R1", card("x", "Alice", map[string]any{"n": 1}))
	s.AddCard("R1", card("x", "Bob", map[string]any{"n": 2}))

	cards := s.Cards("R1")
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].ID() != "x" || cards[1].ID() != "x" {
		t.Error("duplicate ids must be preserved")
	}
}

func TestUpdateCardFirstMatchOnly(t *testing.T) {
	s := NewStore()
	s.AddCard("R1", card("x", "Alice", map[string]any{"n": 1}))
	s.AddCard("R1", card("y", "Alice", nil))
	s.AddCard("R1", card("x", "Bob", map[string]any{"n": 2}))

	if !s.UpdateCard("R1", "x", card("x", "Carol", map[string]any{"n": 9})) {
		t.Fatal("update should report a match")
	}
	cards := s.Cards("R1")
	if cards[0].User().Name() != "Carol" {
		t.Error("first occurrence should be replaced")
	}
	if cards[2].User().Name() != "Bob" {
		t.Error("second occurrence must be untouched")
	}
	// position preserved
	if cards[1].ID() != "y" {
		t.Error("insertion order disturbed")
	}
}

func TestUpdateCardMissIsNoOp(t *testing.T) {
	s := NewStore()
	s.AddCard("R1", card("c1", "Alice", nil))

	if s.UpdateCard("R1", "ghost", card("ghost", "Bob", nil)) {
		t.Error("miss should report false")
	}
	if len(s.Cards("R1")) != 1 {
		t.Error("state must be unchanged on miss")
	}
	if s.UpdateCard("nowhere", "c1", card("c1", "Bob", nil)) {
		t.Error("missing room should report false")
	}
}

func TestRemoveCardRemovesAllMatches(t *testing.T) {
	s := NewStore()
	s.AddCard("R1", card("x", "Alice", nil))
	s.AddCard("R1", card("y", "Bob", nil))
	s.AddCard("R1", card("x", "Carol", nil))

	if n := s.RemoveCard("R1", "x"); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	cards := s.Cards("R1")
	if len(cards) != 1 || cards[0].ID() != "y" {
		t.Errorf("expected only y to survive, got %v", cards)
	}
	if n := s.RemoveCard("R1", "x"); n != 0 {
		t.Errorf("second removal should find nothing, got %d", n)
	}
}

func TestAddRemoveRoundTrip(t *testing.T) {
	s := NewStore()
	ids := []string{"a", "b", "c", "b"}
	for _, id := range ids {
		s.AddCard("R1", card(id, "Alice", nil))
	}
	s.RemoveCard("R1", "b")

	cards := s.Cards("R1")
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].ID() != "a" || cards[1].ID() != "c" {
		t.Errorf("expected [a c], got [%s %s]", cards[0].ID(), cards[1].ID())
	}
}

func TestReassignUserMatchesByName(t *testing.T) {
	s := NewStore()
	s.AddCard("R1", card("c1", "Alice", nil))
	s.AddCard("R1", card("c2", "Bob", nil))
	s.AddCard("R1", card("c3", "Alice", nil))

	next := domain.User{"name": "Alice", "avatar": "new.png"}
	if n := s.ReassignUser("R1", next); n != 2 {
		t.Errorf("expected 2 matches, got %d", n)
	}

	cards := s.Cards("R1")
	if cards[0].User()["avatar"] != "new.png" || cards[2].User()["avatar"] != "new.png" {
		t.Error("matching cards should carry the new snapshot")
	}
	if _, ok := cards[1].User()["avatar"]; ok {
		t.Error("non-matching card must be untouched")
	}

	if n := s.ReassignUser("R1", domain.User{"name": "Nobody"}); n != 0 {
		t.Errorf("zero matches expected, got %d", n)
	}
}

func TestColumnRetagAndClear(t *testing.T) {
	s := NewStore()
	s.AddCard("R1", domain.Card{"id": "c1", "columnId": "col1"})
	s.AddCard("R1", domain.Card{"id": "c2", "columnId": "col2"})

	col := map[string]any{"id": "col1", "title": "Doing"}
	if n := s.RetagColumn("R1", "col1", col); n != 1 {
		t.Errorf("expected 1 retag, got %d", n)
	}
	cards := s.Cards("R1")
	if cards[0]["column"] == nil {
		t.Error("matching card should be tagged")
	}
	if cards[1]["column"] != nil {
		t.Error("other column must be untouched")
	}

	if n := s.ClearColumn("R1", "col1"); n != 1 {
		t.Errorf("expected 1 clear, got %d", n)
	}
	if _, ok := s.Cards("R1")[0]["column"]; ok {
		t.Error("tag should be dropped")
	}
}

func TestMembershipLifecycle(t *testing.T) {
	s := NewStore()
	s.AddMember("R1", "s1")
	s.AddMember("R1", "s2")

	if empty := s.RemoveMember("R1", "s1"); empty {
		t.Error("room still has a member")
	}
	if empty := s.RemoveMember("R1", "s2"); !empty {
		t.Error("room should report empty after last member leaves")
	}
	if !s.DeleteIfEmpty("R1") {
		t.Error("empty room should be deletable")
	}
	if len(s.Cards("R1")) != 0 {
		t.Error("deleted room reads as empty")
	}
	if s.DeleteIfEmpty("R1") {
		t.Error("deleting a missing room reports false")
	}
}

func TestDeleteIfEmptyKeepsOccupiedRoom(t *testing.T) {
	s := NewStore()
	s.AddMember("R1", "s1")
	if s.DeleteIfEmpty("R1") {
		t.Error("occupied room must not be deleted")
	}
	if len(s.Keys()) != 1 {
		t.Error("room vanished")
	}
}

func TestDeleteIfReChecksCondition(t *testing.T) {
	s := NewStore()
	s.EnsureRoom("R1")

	if s.DeleteIf("R1", func() bool { return false }) {
		t.Error("false condition must keep the room")
	}
	if len(s.Keys()) != 1 {
		t.Error("room vanished despite false condition")
	}
	if !s.DeleteIf("R1", func() bool { return true }) {
		t.Error("true condition should delete the room")
	}
	if s.DeleteIf("R1", func() bool { return true }) {
		t.Error("deleting a missing room reports false")
	}
}

func TestConcurrentAdds(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddCard("R1", domain.Card{"id": "c", "n": i})
		}(i)
	}
	wg.Wait()

	if got := len(s.Cards("R1")); got != 100 {
		t.Errorf("expected 100 cards, got %d", got)
	}
}
