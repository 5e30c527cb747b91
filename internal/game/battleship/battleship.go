// Package battleship implements a compact battleship variant: two 5x5
// fleets of three ships (sizes 3, 2, 2), alternating shots, first
// destroyed fleet loses. Fleets are placed randomly at game start and
// ride along in the state token; the shared render only ever shows
// shot results, never unhit ship cells.
package battleship

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"gamesbot/internal/codec"
	"gamesbot/internal/emoji"
	"gamesbot/internal/game"
	"gamesbot/internal/header"
	"gamesbot/internal/platform"
)

const gridSize = 5

var shipSizes = []int{3, 2, 2}

// Battleship implements game.Type.
type Battleship struct{}

func (Battleship) Info() game.Info {
	return game.Info{Name: "Battleship", Command: "battleship", Prefix: "bs"}
}

func (Battleship) New(a, b platform.UserID) game.State {
	return &State{
		Base:   game.NewBase(a, b),
		FleetA: placeFleet(rand.Int63()),
		FleetB: placeFleet(rand.Int63()),
	}
}

func (Battleship) Restore(token string) (game.State, bool) {
	var s State
	if !codec.Decode(token, &s) {
		return nil, false
	}
	if s.PlayerA.Zero() || s.PlayerB.Zero() {
		return nil, false
	}
	if !validFleet(s.FleetA) || !validFleet(s.FleetB) {
		return nil, false
	}
	return &s, true
}

// validFleet checks a decoded fleet against the real ship roster so a
// doctored token cannot claim an already-sunk navy.
func validFleet(fleet []Ship) bool {
	if len(fleet) != len(shipSizes) {
		return false
	}
	seen := make(map[string]bool)
	for i, ship := range fleet {
		if len(ship.Cells) != shipSizes[i] {
			return false
		}
		for _, cell := range ship.Cells {
			if _, _, ok := parseCell(cell); !ok {
				return false
			}
			if seen[cell] {
				return false
			}
			seen[cell] = true
		}
	}
	return true
}

// Ship is one placed ship, cells in "row,col" form.
type Ship struct {
	Cells []string `json:"cells"`
}

func (sh Ship) sunk(shots []string) bool {
	for _, cell := range sh.Cells {
		if !contains(shots, cell) {
			return false
		}
	}
	return true
}

// State is one battleship game. ShotsA are the shots PlayerA has
// fired at FleetB, and vice versa.
type State struct {
	game.Base
	FleetA []Ship   `json:"fleet_a"`
	FleetB []Ship   `json:"fleet_b"`
	ShotsA []string `json:"shots_a,omitempty"`
	ShotsB []string `json:"shots_b,omitempty"`
}

// placeFleet drops the fleet onto an empty grid, deterministic in the
// seed. Ships may touch but never overlap.
func placeFleet(seed int64) []Ship {
	rng := rand.New(rand.NewSource(seed))
	occupied := make(map[string]bool)
	var fleet []Ship
	for _, size := range shipSizes {
		for {
			horizontal := rng.Intn(2) == 0
			var row, col int
			if horizontal {
				row = rng.Intn(gridSize)
				col = rng.Intn(gridSize - size + 1)
			} else {
				row = rng.Intn(gridSize - size + 1)
				col = rng.Intn(gridSize)
			}
			cells := make([]string, size)
			clear := true
			for i := range cells {
				r, c := row, col
				if horizontal {
					c += i
				} else {
					r += i
				}
				cells[i] = cellKey(r, c)
				if occupied[cells[i]] {
					clear = false
				}
			}
			if !clear {
				continue
			}
			for _, cell := range cells {
				occupied[cell] = true
			}
			fleet = append(fleet, Ship{Cells: cells})
			break
		}
	}
	return fleet
}

func cellKey(row, col int) string {
	return strconv.Itoa(row) + "," + strconv.Itoa(col)
}

func parseCell(key string) (row, col int, ok bool) {
	parts := strings.SplitN(key, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	row, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if row < 0 || row >= gridSize || col < 0 || col >= gridSize {
		return 0, 0, false
	}
	return row, col, true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func (s *State) Apply(actor platform.UserID, act game.Action) game.MoveResult {
	actor = s.Attribute(actor, act.AsAdmin)
	// No undo: taking back a shot would leak what the shot revealed.
	if res, ok := s.ApplyShared(actor, act, nil); ok {
		return res
	}
	if !s.IsPlayer(actor) {
		return game.Rejected("You are not a player in this game.")
	}
	if act.Verb != "fire" {
		return game.Refresh()
	}
	if actor != s.CurrentTurn {
		return game.Rejected("It's not your turn to play!")
	}

	cell := act.Value()
	if cell == "" && len(act.Args) >= 2 {
		cell = act.Args[0] + "," + act.Args[1]
	}
	row, col, ok := parseCell(cell)
	if !ok {
		return game.Refresh()
	}
	cell = cellKey(row, col)

	shots := s.shotsBy(actor)
	if contains(*shots, cell) {
		return game.Rejected("You already fired at that square.")
	}
	*shots = append(*shots, cell)
	s.AdvanceTurn()
	return game.Applied()
}

func (s *State) shotsBy(player platform.UserID) *[]string {
	if player == s.PlayerA {
		return &s.ShotsA
	}
	return &s.ShotsB
}

func (s *State) fleetOf(player platform.UserID) []Ship {
	if player == s.PlayerA {
		return s.FleetA
	}
	return s.FleetB
}

func fleetDestroyed(fleet []Ship, shots []string) bool {
	for _, ship := range fleet {
		if !ship.sunk(shots) {
			return false
		}
	}
	return true
}

func (s *State) Outcome() game.Outcome {
	if o := s.SharedOutcome(); o != nil {
		return o
	}
	if fleetDestroyed(s.FleetB, s.ShotsA) {
		return game.Win{Winner: s.PlayerA, Loser: s.PlayerB}
	}
	if fleetDestroyed(s.FleetA, s.ShotsB) {
		return game.Win{Winner: s.PlayerB, Loser: s.PlayerA}
	}
	return nil
}

func (s *State) Header() (string, error) {
	token, err := codec.Encode(s)
	if err != nil {
		return "", fmt.Errorf("encode battleship state: %w", err)
	}
	return header.Build(token, Battleship{}.Info().Name), nil
}

// trackingGrid renders what shooter knows about target's waters:
// hits, sunk ships, misses, and unexplored sea. Unhit ship cells are
// indistinguishable from empty water.
func (s *State) trackingGrid(cat *emoji.Catalog, shooter platform.UserID) string {
	shots := *s.shotsBy(shooter)
	fleet := s.fleetOf(s.Opponent(shooter))

	cellOf := func(row, col int) string {
		key := cellKey(row, col)
		if !contains(shots, key) {
			return "\U0001F7E6" // unexplored
		}
		for _, ship := range fleet {
			if contains(ship.Cells, key) {
				if ship.sunk(shots) {
					return "☠️" // sunk
				}
				return "\U0001F4A5" // hit
			}
		}
		return "\U0001F30A" // miss
	}

	var b strings.Builder
	for row := 0; row < gridSize; row++ {
		b.WriteString(cat.Number(row + 1))
		for col := 0; col < gridSize; col++ {
			b.WriteString(cellOf(row, col))
		}
		b.WriteString("\n")
	}
	b.WriteString("⬛")
	for col := 1; col <= gridSize; col++ {
		b.WriteString(cat.Letter(col))
	}
	return b.String()
}

func (s *State) Render(cat *emoji.Catalog) *platform.Response {
	over := s.Outcome() != nil

	var components []platform.ActionRow
	if !over {
		if menu := s.fireMenu(); menu != nil {
			components = append(components, platform.ActionRow{Menu: menu})
		}
		components = append(components, game.SharedControls("bs", false, "https://www.hasbro.com/common/instruct/battleship.pdf"))
	}

	h, _ := s.Header()
	content := fmt.Sprintf("%sIt is %s's turn to fire!%s",
		h, s.CurrentTurn.Mention(), s.PendingNotes())
	embeds := []platform.Embed{
		{
			Title:       "Shots at " + s.PlayerB.Mention(),
			Description: s.trackingGrid(cat, s.PlayerA),
			Color:       0x1F6FEB,
		},
		{
			Title:       "Shots at " + s.PlayerA.Mention(),
			Description: s.trackingGrid(cat, s.PlayerB),
			Color:       0xDA3633,
		},
	}
	return &platform.Response{
		Kind:       platform.Update,
		Content:    content,
		Components: components,
		Embeds:     embeds,
		Mentions:   []platform.UserID{s.CurrentTurn},
	}
}

// fireMenu lists the squares the player to move has not fired at yet.
// A 5x5 grid never exceeds the 25-option menu limit.
func (s *State) fireMenu() *platform.SelectMenu {
	shots := *s.shotsBy(s.CurrentTurn)
	menu := &platform.SelectMenu{ID: "bs_fire", Placeholder: "Pick a square to fire at"}
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			key := cellKey(row, col)
			if contains(shots, key) {
				continue
			}
			menu.Options = append(menu.Options, platform.SelectOption{
				Label: fmt.Sprintf("%c%d", 'A'+col, row+1),
				Value: key,
			})
		}
	}
	if len(menu.Options) == 0 {
		return nil
	}
	return menu
}
