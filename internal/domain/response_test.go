package domain

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
	"time"
)

func TestNewResponseState_VariantMatchesType(t *testing.T) {
	p := NewResponseState(BoardPrayer)
	if p.Prayer == nil || p.Need != nil {
		t.Fatalf("prayer state has wrong variant: %+v", p)
	}
	if p.Kind() != BoardPrayer {
		t.Fatalf("Kind = %q, want prayer", p.Kind())
	}

	n := NewResponseState(BoardNeed)
	if n.Need == nil || n.Prayer != nil {
		t.Fatalf("need state has wrong variant: %+v", n)
	}
	if n.Kind() != BoardNeed {
		t.Fatalf("Kind = %q, want need", n.Kind())
	}
}

func TestToggle_Involution(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewResponseState(BoardPrayer)
	s.Active().Toggle("u-seed", now)
	before := append([]string(nil), s.Active().Participants...)
	beforeCount := s.Active().Count

	if joined := s.Active().Toggle("u1", now); !joined {
		t.Fatalf("first toggle should join")
	}
	if joined := s.Active().Toggle("u1", now); joined {
		t.Fatalf("second toggle should leave")
	}

	if !reflect.DeepEqual(s.Active().Participants, before) {
		t.Fatalf("participants changed after double toggle: %v != %v", s.Active().Participants, before)
	}
	if s.Active().Count != beforeCount {
		t.Fatalf("count changed after double toggle: %d != %d", s.Active().Count, beforeCount)
	}
}

func TestToggle_CountAlwaysMatchesParticipants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	users := []string{"a", "b", "c", "d", "e"}
	s := NewResponseState(BoardNeed)
	now := time.Now()

	for i := 0; i < 500; i++ {
		u := users[rng.Intn(len(users))]
		s.Active().Toggle(u, now)

		p := s.Active()
		if p.Count != len(p.Participants) {
			t.Fatalf("step %d: count %d != len %d", i, p.Count, len(p.Participants))
		}
		if !sort.StringsAreSorted(p.Participants) {
			t.Fatalf("step %d: participants not sorted: %v", i, p.Participants)
		}
		for j := 1; j < len(p.Participants); j++ {
			if p.Participants[j] == p.Participants[j-1] {
				t.Fatalf("step %d: duplicate participant %q", i, p.Participants[j])
			}
		}
	}
}

func TestToggle_StampsLastUpdated(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("x", 3600))
	s := NewResponseState(BoardPrayer)
	s.Active().Toggle("u1", now)

	got := s.Active().LastUpdatedAt
	if got == nil || !got.Equal(now) {
		t.Fatalf("LastUpdatedAt = %v, want %v", got, now)
	}
	if got.Location() != time.UTC {
		t.Fatalf("LastUpdatedAt not normalized to UTC: %v", got.Location())
	}
}

func TestMessage_SetAndClear(t *testing.T) {
	now := time.Now()
	s := NewResponseState(BoardNeed)

	s.SetMessage("God provided", now)
	if s.Active().Message == nil || *s.Active().Message != "God provided" {
		t.Fatalf("message not set: %+v", s.Active())
	}

	s.ClearMessage(now)
	if s.Active().Message != nil {
		t.Fatalf("message not cleared: %+v", s.Active())
	}
}

func TestResponseState_ScanValueRoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewResponseState(BoardPrayer)
	s.Active().Toggle("u1", now)
	s.Active().Toggle("u2", now)
	s.SetMessage("answered", now)

	v, err := s.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var got ResponseState
	if err := got.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got.Kind() != BoardPrayer || got.Active().Count != 2 || !got.Active().Has("u2") {
		t.Fatalf("round-trip mismatch: %+v", got.Active())
	}
}

func TestResponseState_ScanNilAndEmpty(t *testing.T) {
	var s ResponseState
	if err := s.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if err := s.Scan(""); err != nil {
		t.Fatalf("Scan(\"\"): %v", err)
	}
	// Zero-value documents still expose a usable participation core.
	if s.Active() == nil || s.Kind() != BoardPrayer {
		t.Fatalf("zero-value state unusable: %+v", s)
	}
	if err := s.Scan(3.14); err == nil {
		t.Fatalf("expected error for unsupported column type")
	}
}

func TestUser_HasRole(t *testing.T) {
	u := &User{ID: "u1", Roles: StringList{"member", "moderator"}}
	if !u.HasRole("moderator") {
		t.Fatalf("expected moderator role")
	}
	if u.HasRole("admin") {
		t.Fatalf("unexpected admin role")
	}
}
