// Package game holds the live-game data model fed in by the table client:
// board snapshots, player identities, and game-state events. It also maps
// that model onto gnubg's position and match identifiers.
package game

import "sort"

// PlayerID is the opaque identifier the table client assigns to a player.
type PlayerID string

// NumPoints is the number of points on the board.
const NumPoints = 24

// Point is one board point as reported by the table client.
type Point struct {
	Number        int      `json:"number"`
	OccupiedBy    PlayerID `json:"occupiedBy,omitempty"`
	CheckersCount int      `json:"checkersCount"`
}

// Snapshot is a board as reported by the table client. Point numbers are
// physical (1..24 as drawn on the table), not per-player.
type Snapshot struct {
	Points    []Point          `json:"points"`
	BarCounts map[PlayerID]int `json:"barCounts"`
	OffCounts map[PlayerID]int `json:"offCounts"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := &Snapshot{
		Points:    make([]Point, len(s.Points)),
		BarCounts: make(map[PlayerID]int, len(s.BarCounts)),
		OffCounts: make(map[PlayerID]int, len(s.OffCounts)),
	}
	copy(c.Points, s.Points)
	for k, v := range s.BarCounts {
		c.BarCounts[k] = v
	}
	for k, v := range s.OffCounts {
		c.OffCounts[k] = v
	}
	return c
}

// Point returns the point with the given number, or nil.
func (s *Snapshot) Point(number int) *Point {
	for i := range s.Points {
		if s.Points[i].Number == number {
			return &s.Points[i]
		}
	}
	return nil
}

// EnsurePoint returns the point with the given number, adding an empty one
// if the snapshot does not list it.
func (s *Snapshot) EnsurePoint(number int) *Point {
	if p := s.Point(number); p != nil {
		return p
	}
	s.Points = append(s.Points, Point{Number: number})
	return &s.Points[len(s.Points)-1]
}

// Count returns how many of the player's checkers sit on a point.
func (s *Snapshot) Count(player PlayerID, number int) int {
	p := s.Point(number)
	if p == nil || p.OccupiedBy != player {
		return 0
	}
	return p.CheckersCount
}

// Bar returns the player's bar count.
func (s *Snapshot) Bar(player PlayerID) int { return s.BarCounts[player] }

// Off returns the player's borne-off count.
func (s *Snapshot) Off(player PlayerID) int { return s.OffCounts[player] }

// Total returns all of a player's checkers: points, bar and off.
func (s *Snapshot) Total(player PlayerID) int {
	n := s.BarCounts[player] + s.OffCounts[player]
	for _, p := range s.Points {
		if p.OccupiedBy == player {
			n += p.CheckersCount
		}
	}
	return n
}

// Inverted returns a copy with every point renumbered n -> 25-n, the view
// of a player who moves in the opposite direction.
func (s *Snapshot) Inverted() *Snapshot {
	c := s.Clone()
	for i := range c.Points {
		c.Points[i].Number = NumPoints + 1 - c.Points[i].Number
	}
	sort.Slice(c.Points, func(i, j int) bool { return c.Points[i].Number < c.Points[j].Number })
	return c
}

// StartingSnapshot returns the opening position. down is the player moving
// 24->1 on the physical board and up the player moving 1->24.
func StartingSnapshot(down, up PlayerID) *Snapshot {
	s := &Snapshot{
		BarCounts: map[PlayerID]int{down: 0, up: 0},
		OffCounts: map[PlayerID]int{down: 0, up: 0},
	}
	for _, p := range []struct{ n, c int }{{24, 2}, {13, 5}, {8, 3}, {6, 5}} {
		s.Points = append(s.Points,
			Point{Number: p.n, OccupiedBy: down, CheckersCount: p.c},
			Point{Number: NumPoints + 1 - p.n, OccupiedBy: up, CheckersCount: p.c},
		)
	}
	sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Number < s.Points[j].Number })
	return s
}
