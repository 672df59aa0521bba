package room

import "testing"

func TestCanonicalIDIsCommutative(t *testing.T) {
	pairs := [][2]int64{
		{1, 2},
		{2, 1},
		{7, 7},
		{42, 3},
		{10, 2},
	}

	for _, p := range pairs {
		ab := CanonicalID(p[0], p[1])
		ba := CanonicalID(p[1], p[0])
		if ab != ba {
			t.Errorf("CanonicalID(%d,%d)=%q != CanonicalID(%d,%d)=%q", p[0], p[1], ab, p[1], p[0], ba)
		}
	}

	if got := CanonicalID(10, 2); got != "2_10" {
		t.Errorf("expected numeric ordering 2_10, got %q", got)
	}
}

func TestParticipantsRoundTrip(t *testing.T) {
	id := CanonicalID(5, 3)
	a, b, err := Participants(id)
	if err != nil {
		t.Fatalf("Participants(%q): %v", id, err)
	}
	if a != 3 || b != 5 {
		t.Fatalf("expected (3,5), got (%d,%d)", a, b)
	}
}

func TestParticipantsRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"1",
		"1_2_3",
		"a_b",
		"1_b",
		"_2",
		"0_2",
		"-1_2",
		"5_3", // not canonical order
	}

	for _, id := range bad {
		if _, _, err := Participants(id); err == nil {
			t.Errorf("Participants(%q): expected error", id)
		}
	}
}

func TestIsParticipant(t *testing.T) {
	id := CanonicalID(1, 2)

	if !IsParticipant(id, 1) || !IsParticipant(id, 2) {
		t.Fatalf("expected both 1 and 2 to be participants of %q", id)
	}
	if IsParticipant(id, 3) {
		t.Fatalf("expected 3 not to be a participant of %q", id)
	}
	if IsParticipant("garbage", 1) {
		t.Fatal("malformed id must match no one")
	}
}
