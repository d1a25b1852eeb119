// Package positionid implements gnubg's position ID encoding.
//
// A position ID is a 14-character base64 string over an 80-bit key. The key
// holds, for the player not on roll and then for the player on roll, a unary
// run per point (1..24) followed by a unary run for the bar. Each run is
// `count` one-bits terminated by a zero. Bits are packed LSB-first per byte
// (see internal/bitstream) and the 10 key bytes are base64 encoded with the
// trailing two characters dropped.
package positionid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/bgpilot/internal/bitstream"
)

const (
	// PositionIDLength is the length of a position ID string
	PositionIDLength = 14
	// KeyBits is the number of significant bits in a position key
	KeyBits = 80
	// KeyBytes is the packed size of a position key
	KeyBytes = KeyBits / 8
	// BarIndex is the slot holding a player's bar count in a Board row
	BarIndex = 24
	// MaxCheckers is the checker total of a standard game
	MaxCheckers = 15
)

// Board represents a backgammon board from the engine's perspective.
// Board[0] is the player not on roll, Board[1] the player on roll. Within a
// row index i (0..23) is point i+1 as seen by that player, counting toward
// their home, and index 24 is the bar.
type Board [2][25]uint8

var (
	// ErrInvalidPositionID is returned when a position ID is not valid base64
	ErrInvalidPositionID = errors.New("invalid position ID")
	// ErrShortPositionID is returned when a position ID decodes to fewer than 80 bits
	ErrShortPositionID = errors.New("position ID too short")
	// ErrTooManyCheckers is returned when a board does not fit in 80 bits
	ErrTooManyCheckers = errors.New("position has too many checkers to encode")
)

// Key packs a board into its 80-bit key.
func Key(board Board) ([KeyBytes]byte, error) {
	var key [KeyBytes]byte

	w := bitstream.NewWriter(KeyBits)
	for player := 0; player < 2; player++ {
		for point := 0; point < 24; point++ {
			w.WriteUnary(int(board[player][point]))
		}
		w.WriteUnary(int(board[player][BarIndex]))
	}
	if err := w.Err(); err != nil {
		return key, fmt.Errorf("%w: %v", ErrTooManyCheckers, err)
	}

	copy(key[:], w.Bytes())
	return key, nil
}

// PositionIDFromKey renders a packed key as a position ID string.
func PositionIDFromKey(key [KeyBytes]byte) string {
	return base64.StdEncoding.EncodeToString(key[:])[:PositionIDLength]
}

// PositionID generates a base64 position ID string from a board.
func PositionID(board Board) (string, error) {
	key, err := Key(board)
	if err != nil {
		return "", err
	}
	return PositionIDFromKey(key), nil
}

// Decode reverses PositionID. It only checks the encoding; the returned
// board may still be illegal (see CheckPosition).
func Decode(posID string) (Board, error) {
	var board Board

	posID = strings.TrimSpace(posID)
	if pad := len(posID) % 4; pad != 0 {
		posID += strings.Repeat("=", 4-pad)
	}
	raw, err := base64.StdEncoding.DecodeString(posID)
	if err != nil {
		return board, fmt.Errorf("%w: %v", ErrInvalidPositionID, err)
	}
	if len(raw)*8 < KeyBits {
		return board, ErrShortPositionID
	}

	r := bitstream.NewReader(raw, KeyBits)
	for player := 0; player < 2; player++ {
		for point := 0; point < 24; point++ {
			board[player][point] = uint8(r.ReadUnary())
		}
		board[player][BarIndex] = uint8(r.ReadUnary())
	}

	return board, nil
}

// BoardFromPositionID decodes a position ID and rejects illegal positions.
func BoardFromPositionID(posID string) (Board, error) {
	board, err := Decode(posID)
	if err != nil {
		return board, err
	}
	if !CheckPosition(board) {
		return board, ErrInvalidPositionID
	}
	return board, nil
}

// CheckPosition reports whether a decoded board can occur in play: at most
// MaxCheckers per side, no point held by both sides, and not both sides on
// the bar against closed home boards.
func CheckPosition(board Board) bool {
	if board.Checkers(0) > MaxCheckers || board.Checkers(1) > MaxCheckers {
		return false
	}
	for i := 0; i < 24; i++ {
		if board[0][i] > 0 && board[1][23-i] > 0 {
			return false
		}
	}
	if board[0][BarIndex] == 0 || board[1][BarIndex] == 0 {
		return true
	}
	return !closedHome(board[0]) || !closedHome(board[1])
}

func closedHome(row [25]uint8) bool {
	for i := 0; i < 6; i++ {
		if row[i] < 2 {
			return false
		}
	}
	return true
}

// Checkers returns the number of checkers a player has on the board and bar.
func (b Board) Checkers(player int) int {
	n := 0
	for _, c := range b[player] {
		n += int(c)
	}
	return n
}
