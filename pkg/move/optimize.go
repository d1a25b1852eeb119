package move

// Optimize merges segments (a,b) ... (b,c) into (a,c), left to right.
//
// A segment leaving the bar is never the first half of a merge, and neither
// is a segment that hits: the checker stops on the hit point, and the merged
// move would hide the hit. The merged segment keeps the hit flag of its
// second half.
func Optimize(plan []Token) []Token {
	out := make([]Token, len(plan))
	copy(out, plan)

	for i := 0; i < len(out)-1; i++ {
		for j := i + 1; j < len(out); j++ {
			first := out[i]
			if first.From == Bar || first.Hit {
				break
			}
			if first.To != out[j].From {
				continue
			}
			out[i] = Token{From: first.From, To: out[j].To, Hit: out[j].Hit}
			out = append(out[:j], out[j+1:]...)
			j = i
		}
	}
	return out
}
