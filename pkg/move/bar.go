package move

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat/combin"
)

// HopCheck reports whether the hop-th step of a bar entry, from -> to, is
// legal on the current board.
type HopCheck func(from, to Point, hop int) bool

// DecomposeBar splits an entry from the bar to target into single-die hops.
//
// dice is the multiset still available this turn, doubles already expanded
// to four faces. Sub-multisets summing to 25-target are tried from the
// largest size down, each in every ordering, and the first ordering whose
// hops all pass check is returned. When none does, the aggregate "bar/target"
// is returned unverified. A nil check accepts every hop that stays on the
// board.
func DecomposeBar(target Point, dice []int, check HopCheck) []Token {
	fallback := []Token{{From: Bar, To: target}}
	if !target.IsBoard() || len(dice) == 0 {
		return fallback
	}
	need := int(Bar - target)

	for k := len(dice); k >= 1; k-- {
		for _, faces := range subsetsSumming(dice, k, need) {
			if hops, ok := walkOrderings(target, faces, check); ok {
				return hops
			}
		}
	}
	return fallback
}

// subsetsSumming returns the distinct size-k sub-multisets of dice with the
// given sum, each sorted ascending.
func subsetsSumming(dice []int, k, sum int) [][]int {
	var out [][]int
	seen := make(map[string]bool)
	for _, idx := range combin.Combinations(len(dice), k) {
		faces := make([]int, k)
		total := 0
		for i, j := range idx {
			faces[i] = dice[j]
			total += dice[j]
		}
		if total != sum {
			continue
		}
		sort.Ints(faces)
		key := fmt.Sprint(faces)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, faces)
	}
	return out
}

func walkOrderings(target Point, faces []int, check HopCheck) ([]Token, bool) {
	tried := make(map[string]bool)
	for _, perm := range combin.Permutations(len(faces), len(faces)) {
		order := make([]string, len(perm))
		for i, j := range perm {
			order[i] = fmt.Sprint(faces[j])
		}
		key := strings.Join(order, ",")
		if tried[key] {
			continue
		}
		tried[key] = true

		hops := make([]Token, 0, len(perm))
		cur := Bar
		ok := true
		for hop, j := range perm {
			next := cur - Point(faces[j])
			if !next.IsBoard() || (check != nil && !check(cur, next, hop)) {
				ok = false
				break
			}
			hops = append(hops, Token{From: cur, To: next})
			cur = next
		}
		if ok && cur == target {
			return hops, true
		}
	}
	return nil, false
}
