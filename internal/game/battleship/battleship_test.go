package battleship

import (
	"strings"
	"testing"

	"gamesbot/internal/game"
	"gamesbot/internal/header"
	"gamesbot/internal/platform"
)

const (
	anna platform.UserID = "1"
	ben  platform.UserID = "2"
)

func TestPlaceFleetDeterministicAndDisjoint(t *testing.T) {
	a := placeFleet(42)
	b := placeFleet(42)

	if len(a) != len(shipSizes) {
		t.Fatalf("fleet size = %d", len(a))
	}
	seen := make(map[string]bool)
	total := 0
	for i, ship := range a {
		if len(ship.Cells) != shipSizes[i] {
			t.Fatalf("ship %d has %d cells", i, len(ship.Cells))
		}
		for _, c := range ship.Cells {
			if seen[c] {
				t.Fatalf("overlapping cell %s", c)
			}
			seen[c] = true
			if _, _, ok := parseCell(c); !ok {
				t.Fatalf("cell %s off the grid", c)
			}
			total++
		}
	}
	if total != 7 {
		t.Fatalf("fleet covers %d cells", total)
	}

	for i := range a {
		for j := range a[i].Cells {
			if a[i].Cells[j] != b[i].Cells[j] {
				t.Fatal("same seed must place the same fleet")
			}
		}
	}
}

func TestFireAlternatesAndRejectsRepeats(t *testing.T) {
	s := Battleship{}.New(anna, ben).(*State)

	res := s.Apply(anna, game.Action{Verb: "fire", Values: []string{"0,0"}})
	if res.Status != game.StatusApplied {
		t.Fatalf("first shot: %+v", res)
	}
	if s.CurrentTurn != ben {
		t.Fatal("turn must pass after a shot")
	}

	res = s.Apply(anna, game.Action{Verb: "fire", Values: []string{"0,1"}})
	if res.Status != game.StatusRejected {
		t.Fatalf("out of turn: %+v", res)
	}

	res = s.Apply(ben, game.Action{Verb: "fire", Values: []string{"4,4"}})
	if res.Status != game.StatusApplied {
		t.Fatalf("reply shot: %+v", res)
	}

	res = s.Apply(anna, game.Action{Verb: "fire", Values: []string{"0,0"}})
	if res.Status != game.StatusRejected {
		t.Fatalf("repeat shot: %+v", res)
	}
}

func TestSinkAndWin(t *testing.T) {
	s := Battleship{}.New(anna, ben).(*State)

	// Shoot out ben's whole fleet, with ben wasting shots in between.
	benTargets := []string{"0,0", "0,1", "0,2", "0,3", "0,4", "1,0", "1,1", "1,2", "1,3", "1,4"}
	wasted := 0
	for _, ship := range s.FleetB {
		for _, cell := range ship.Cells {
			res := s.Apply(anna, game.Action{Verb: "fire", Values: []string{cell}})
			if res.Status != game.StatusApplied {
				t.Fatalf("shot at %s: %+v", cell, res)
			}
			if s.Outcome() != nil {
				break
			}
			res = s.Apply(ben, game.Action{Verb: "fire", Values: []string{benTargets[wasted]}})
			if res.Status != game.StatusApplied {
				t.Fatalf("ben shot: %+v", res)
			}
			wasted++
		}
	}

	win, ok := s.Outcome().(game.Win)
	if !ok {
		t.Fatalf("outcome = %v", s.Outcome())
	}
	if win.Winner != anna || win.Loser != ben {
		t.Fatalf("win = %+v", win)
	}
}

func TestNoUndo(t *testing.T) {
	s := Battleship{}.New(anna, ben).(*State)
	s.Apply(anna, game.Action{Verb: "fire", Values: []string{"2,2"}})

	res := s.Apply(ben, game.Action{Verb: "undo"})
	if res.Status != game.StatusRejected {
		t.Fatalf("undo: %+v", res)
	}
}

func TestTrackingGridHidesUnhitShips(t *testing.T) {
	s := Battleship{}.New(anna, ben).(*State)
	grid := s.trackingGrid(nil, anna)
	for _, glyph := range []string{"\U0001F4A5", "☠", "\U0001F30A"} {
		if strings.Contains(grid, glyph) {
			t.Fatalf("fresh grid leaks %q", glyph)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	s := Battleship{}.New(anna, ben).(*State)
	s.Apply(anna, game.Action{Verb: "fire", Values: []string{"3,3"}})

	h, err := s.Header()
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	token, name, ok := header.Parse(h)
	if !ok || name != "Battleship" {
		t.Fatalf("Parse: %q %v", name, ok)
	}
	restored, ok := Battleship{}.Restore(token)
	if !ok {
		t.Fatal("Restore failed")
	}
	rs := restored.(*State)
	if len(rs.ShotsA) != 1 || rs.ShotsA[0] != "3,3" {
		t.Fatalf("shots lost: %v", rs.ShotsA)
	}
	if rs.Turn() != ben {
		t.Fatalf("turn = %v", rs.Turn())
	}
}

func TestRestoreRejectsDoctoredFleets(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *State)
	}{
		{"empty ships", func(s *State) {
			s.FleetB = []Ship{{Cells: nil}, {Cells: nil}, {Cells: nil}}
		}},
		{"undersized ship", func(s *State) {
			s.FleetA[0].Cells = s.FleetA[0].Cells[:1]
		}},
		{"cell off the grid", func(s *State) {
			s.FleetA[0].Cells[0] = "9,9"
		}},
		{"unparseable cell", func(s *State) {
			s.FleetA[0].Cells[0] = "bogus"
		}},
		{"overlapping ships", func(s *State) {
			s.FleetA[1].Cells = s.FleetA[0].Cells[:2]
		}},
	}
	for _, tt := range tests {
		s := Battleship{}.New(anna, ben).(*State)
		tt.mutate(s)
		h, err := s.Header()
		if err != nil {
			t.Fatalf("%s: Header: %v", tt.name, err)
		}
		token, _, ok := header.Parse(h)
		if !ok {
			t.Fatalf("%s: Parse failed", tt.name)
		}
		if _, ok := (Battleship{}).Restore(token); ok {
			t.Errorf("%s: forged token restored", tt.name)
		}
	}
}
