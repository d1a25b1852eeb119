// Package matchid implements gnubg's match ID encoding.
//
// The match key is a 66-bit stream of little-endian fields, packed into 9
// bytes LSB-first and base64 encoded without padding (12 characters):
//
//	cube log2 (4) · cube owner (2) · dice owner (1) · crawford (1) ·
//	game state (3) · turn (1) · double offered (1) · resign (2) ·
//	die 1 (3) · die 2 (3) · match length (15) · score 0 (15) · score 1 (15)
package matchid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/bgpilot/internal/bitstream"
)

const (
	// MatchIDLength is the length of a match ID string
	MatchIDLength = 12
	// KeyBits is the number of significant bits in a match key
	KeyBits = 66
	// KeyBytes is the packed size of a match key
	KeyBytes = 9

	// CubeCentered is the CubeOwner value of a centered cube
	CubeCentered = -1

	// GamePlaying is the only game state this package emits
	GamePlaying = 1
)

// Owner codes as they appear on the wire.
const (
	ownerPlayer0  = 0b00
	ownerPlayer1  = 0b01
	ownerCentered = 0b11
)

// ErrInvalidMatchID is returned when a match ID cannot be decoded.
var ErrInvalidMatchID = errors.New("invalid match ID")

// Fields holds the match context carried by a match ID.
type Fields struct {
	CubeValue     int    // 1, 2, 4, 8, ...
	CubeOwner     int    // -1=centered, 0=player0, 1=player1
	PlayerOnRoll  int    // 0 or 1, also written as the dice owner
	TurnOwner     int    // 0 or 1, who makes the next decision
	Crawford      bool   // Crawford game flag
	DoubleOffered bool   // a double is pending
	Resign        int    // 0=none, 1=single, 2=gammon, 3=backgammon
	Dice          [2]int // 0 when not rolled
	MatchLength   int    // 0 = money game
	Score         [2]int // score of player 0 and player 1
	GameState     int    // only set by Decode
}

// cubeLog2 returns log2 of the cube value, rounding down.
func cubeLog2(value int) uint64 {
	var n uint64
	for v := value; v > 1; v >>= 1 {
		n++
	}
	return n
}

func ownerCode(owner int) uint64 {
	switch owner {
	case CubeCentered:
		return ownerCentered
	case 0:
		return ownerPlayer0
	case 1:
		return ownerPlayer1
	}
	panic(fmt.Sprintf("matchid: cube owner must be -1, 0 or 1, got %d", owner))
}

// Key packs the fields into a 9-byte match key. It panics if CubeOwner is
// not one of -1, 0, 1: that is a caller bug, not a data error.
func Key(f Fields) [KeyBytes]byte {
	w := bitstream.NewWriter(KeyBits)
	w.WriteUint(cubeLog2(f.CubeValue), 4)
	w.WriteUint(ownerCode(f.CubeOwner), 2)
	w.WriteUint(uint64(f.PlayerOnRoll), 1)
	w.WriteUint(boolBit(f.Crawford), 1)
	w.WriteUint(GamePlaying, 3)
	w.WriteUint(uint64(f.TurnOwner), 1)
	w.WriteUint(boolBit(f.DoubleOffered), 1)
	w.WriteUint(uint64(f.Resign), 2)
	w.WriteUint(uint64(f.Dice[0]), 3)
	w.WriteUint(uint64(f.Dice[1]), 3)
	w.WriteUint(uint64(f.MatchLength), 15)
	w.WriteUint(uint64(f.Score[0]), 15)
	w.WriteUint(uint64(f.Score[1]), 15)

	var key [KeyBytes]byte
	copy(key[:], w.Bytes())
	return key
}

// MatchID encodes the fields as a 12-character match ID.
func MatchID(f Fields) string {
	key := Key(f)
	return strings.TrimRight(base64.StdEncoding.EncodeToString(key[:]), "=")
}

// Decode parses a match ID back into its fields.
func Decode(matchID string) (Fields, error) {
	var f Fields

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(matchID), "="))
	if err != nil {
		return f, fmt.Errorf("%w: %v", ErrInvalidMatchID, err)
	}
	if len(raw)*8 < KeyBits {
		return f, fmt.Errorf("%w: %d bits", ErrInvalidMatchID, len(raw)*8)
	}

	r := bitstream.NewReader(raw, KeyBits)
	read := func(width int) int {
		v, _ := r.ReadUint(width) // length checked above
		return int(v)
	}

	f.CubeValue = 1 << read(4)
	switch read(2) {
	case ownerPlayer0:
		f.CubeOwner = 0
	case ownerPlayer1:
		f.CubeOwner = 1
	default:
		f.CubeOwner = CubeCentered
	}
	f.PlayerOnRoll = read(1)
	f.Crawford = read(1) == 1
	f.GameState = read(3)
	f.TurnOwner = read(1)
	f.DoubleOffered = read(1) == 1
	f.Resign = read(2)
	f.Dice[0] = read(3)
	f.Dice[1] = read(3)
	f.MatchLength = read(15)
	f.Score[0] = read(15)
	f.Score[1] = read(15)

	return f, nil
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
