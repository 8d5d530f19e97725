package match

// Score returns the fuzzy similarity used by the matcher: the greater
// of the normalized Levenshtein ratio and the Jaro-Winkler score.
// Levenshtein penalizes a long name whose tail diverges even when the
// records clearly refer to the same body; Jaro-Winkler's prefix boost
// recovers those, so the two together rank government names better
// than either alone.
func Score(a, b string) float64 {
	s := Similarity(a, b)
	if jw := JaroWinkler(a, b); jw > s {
		return jw
	}
	return s
}

// Similarity returns a normalized Levenshtein similarity in [0, 1]:
// 1 minus the edit distance divided by the longer length. Inputs are
// compared as runes, so normalized multi-byte names score correctly.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(editDistance(ra, rb))/float64(longest)
}

// editDistance computes the Levenshtein distance with a two-row table.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	row := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(row[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, row = row, prev
	}

	return prev[len(b)]
}

// JaroWinkler returns the Jaro-Winkler similarity in [0, 1], boosting
// the Jaro score for a shared prefix of up to four runes.
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)

	jaro := jaroScore(ra, rb)
	if jaro == 0 {
		return 0
	}

	prefix := 0
	for i := 0; i < len(ra) && i < len(rb) && i < 4; i++ {
		if ra[i] != rb[i] {
			break
		}
		prefix++
	}

	const scaling = 0.1
	return jaro + float64(prefix)*scaling*(1.0-jaro)
}

func jaroScore(a, b []rune) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	window := max(len(a), len(b))/2 - 1
	if window < 0 {
		window = 0
	}

	aMatched := make([]bool, len(a))
	bMatched := make([]bool, len(b))

	matches := 0
	for i := range a {
		lo := max(0, i-window)
		hi := min(len(b), i+window+1)
		for j := lo; j < hi; j++ {
			if bMatched[j] || a[i] != b[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	j := 0
	for i := range a {
		if !aMatched[i] {
			continue
		}
		for !bMatched[j] {
			j++
		}
		if a[i] != b[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(len(a)) + m/float64(len(b)) + (m-t)/m) / 3
}
