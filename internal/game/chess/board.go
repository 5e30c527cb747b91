package chess

import (
	"strings"

	"gamesbot/internal/emoji"
)

// pieceAt reads the piece on a square straight out of a FEN string.
// Returns the FEN letter (uppercase white, lowercase black).
func pieceAt(fen, square string) (byte, bool) {
	if len(square) != 2 {
		return 0, false
	}
	file := int(square[0] - 'a')
	rank := int(square[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return 0, false
	}
	rows := strings.Split(strings.Fields(fen)[0], "/")
	if len(rows) != 8 {
		return 0, false
	}
	row := rows[7-rank]
	col := 0
	for i := 0; i < len(row); i++ {
		c := row[i]
		if c >= '1' && c <= '8' {
			col += int(c - '0')
			continue
		}
		if col == file {
			return c, true
		}
		col++
	}
	return 0, false
}

func pieceName(fenLetter byte) string {
	switch fenLetter {
	case 'K', 'k':
		return "King"
	case 'Q', 'q':
		return "Queen"
	case 'R', 'r':
		return "Rook"
	case 'B', 'b':
		return "Bishop"
	case 'N', 'n':
		return "Knight"
	case 'P', 'p':
		return "Pawn"
	}
	return "Unknown"
}

// squareEmojiName maps a square's occupant and shade to an emoji in
// the catalog: "{w|b}{SYMBOL}{g|w}" for pieces, "green"/"white" for
// empty squares, with a "_danger" suffix when highlighted.
func squareEmojiName(fen, square string, danger bool) string {
	file := int(square[0] - 'a')
	rank := int(square[1] - '1')
	dark := (file+rank)%2 == 1

	name := ""
	piece, occupied := pieceAt(fen, square)
	if !occupied {
		if dark {
			name = "green"
		} else {
			name = "white"
		}
	} else {
		color := "w"
		if piece >= 'a' && piece <= 'z' {
			color = "b"
		}
		background := "w"
		if dark {
			background = "g"
		}
		name = color + strings.ToUpper(string(piece)) + background
	}
	if danger {
		name += "_danger"
	}
	return name
}

func (s *State) squareEmoji(cat *emoji.Catalog, square string) string {
	return cat.Lookup(squareEmojiName(s.FEN, square, false))
}

// boardString draws the full board from white's perspective with rank
// and file legends. Legal targets of the selected piece are drawn in
// their danger variants.
func (s *State) boardString(cat *emoji.Catalog) string {
	danger := make(map[string]bool)
	if s.Selected != "" {
		for _, target := range s.legalTargets()[s.Selected] {
			danger[target] = true
		}
	}

	var b strings.Builder
	for rank := 8; rank >= 1; rank-- {
		b.WriteString(cat.Number(rank))
		for file := 0; file < 8; file++ {
			square := string(rune('a'+file)) + string(rune('0'+rank))
			b.WriteString(cat.Lookup(squareEmojiName(s.FEN, square, danger[square])))
		}
		b.WriteString("\n")
	}
	b.WriteString(cat.Lookup("quiggle"))
	for file := 1; file <= 8; file++ {
		b.WriteString(cat.Letter(file))
	}
	return b.String()
}
