package index

// maxPatternLen bounds the pattern length scored in one pass. Longer
// patterns are split into chunks and their scores averaged.
const maxPatternLen = 32

// exactScore is the score reported for an exact substring hit. It is the
// float64 machine epsilon, so a weighted exact hit stays near zero without
// collapsing the product to exactly zero.
const exactScore = 0x1p-52

// substringDistance returns the smallest edit distance between pattern and
// any substring of text. Where the substring starts is free, so the match
// position inside the text carries no penalty.
func substringDistance(pattern, text []rune) int {
	m := len(pattern)
	if m == 0 {
		return 0
	}
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}
	best := prev[m]
	for _, tc := range text {
		cur[0] = 0
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == tc {
				cost = 0
			}
			cur[i] = min(prev[i-1]+cost, prev[i]+1, cur[i-1]+1)
		}
		if cur[m] < best {
			best = cur[m]
		}
		prev, cur = cur, prev
	}
	return best
}

// chunkPattern splits a pattern into maxPatternLen pieces. The final piece is
// the last maxPatternLen runes so every chunk has full length.
func chunkPattern(pattern []rune) [][]rune {
	if len(pattern) <= maxPatternLen {
		return [][]rune{pattern}
	}
	var chunks [][]rune
	end := len(pattern) - len(pattern)%maxPatternLen
	for i := 0; i < end; i += maxPatternLen {
		chunks = append(chunks, pattern[i:i+maxPatternLen])
	}
	if end < len(pattern) {
		chunks = append(chunks, pattern[len(pattern)-maxPatternLen:])
	}
	return chunks
}

// scoreText scores pattern chunks against one text. A chunk hits when its
// normalized distance is within threshold; missed chunks score 1. The text
// matches when any chunk hits, and its score is the chunk average.
func scoreText(chunks [][]rune, text []rune, threshold float64) (float64, bool) {
	if len(text) == 0 || len(chunks) == 0 {
		return 1, false
	}
	var total float64
	matched := false
	for _, c := range chunks {
		d := float64(substringDistance(c, text)) / float64(len(c))
		if d <= threshold {
			matched = true
			total += max(exactScore, d)
			continue
		}
		total += 1
	}
	if !matched {
		return 1, false
	}
	return total / float64(len(chunks)), true
}
