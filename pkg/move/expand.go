package move

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var repeatRe = regexp.MustCompile(`\((\d+)\)\s*$`)

// Expand splits one compound token into elementary segments.
//
// A two-point token is returned n times for a "(n)" suffix. A chain is
// paired into consecutive segments, each "*" marking a hit on the segment
// arriving at that point, and the last segment alone is repeated n-1 more
// times.
func Expand(s string) ([]Token, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	count := 1
	if m := repeatRe.FindStringSubmatchIndex(s); m != nil {
		n, err := strconv.Atoi(s[m[2]:m[3]])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: repeat in %q", ErrInvalidToken, s)
		}
		count = n
		s = strings.TrimSpace(s[:m[0]])
	}

	parts := strings.Split(s, "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q has no '/'", ErrInvalidToken, s)
	}

	points := make([]Point, len(parts))
	hits := make([]bool, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if strings.HasSuffix(part, "*") {
			hits[i] = true
			part = strings.TrimSuffix(part, "*")
		}
		p, err := ParsePoint(part)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		points[i] = p
	}

	segs := make([]Token, 0, len(points)-1+count-1)
	for i := 0; i+1 < len(points); i++ {
		switch {
		case points[i] == points[i+1]:
			return nil, fmt.Errorf("%w: %q moves %s to itself", ErrInvalidToken, s, points[i])
		case points[i] == Off:
			return nil, fmt.Errorf("%w: %q moves from off", ErrInvalidToken, s)
		case points[i+1] == Bar:
			return nil, fmt.Errorf("%w: %q moves onto the bar", ErrInvalidToken, s)
		}
		segs = append(segs, Token{From: points[i], To: points[i+1], Hit: hits[i+1]})
	}

	last := segs[len(segs)-1]
	for i := 1; i < count; i++ {
		segs = append(segs, last)
	}
	return segs, nil
}

// ParseLine expands every slash-bearing whitespace-separated token of a line.
// Words without a '/' are skipped.
func ParseLine(line string) ([]Token, error) {
	var plan []Token
	for _, word := range strings.Fields(line) {
		if !strings.Contains(word, "/") {
			continue
		}
		segs, err := Expand(word)
		if err != nil {
			return nil, err
		}
		plan = append(plan, segs...)
	}
	return plan, nil
}
