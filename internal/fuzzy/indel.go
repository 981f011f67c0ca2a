package fuzzy

// lcsLength — длина наибольшей общей подпоследовательности (по рунам).
// Indel-расстояние = len(a)+len(b)-2*LCS.
func lcsLength(ra, rb []rune) int {
	al, bl := len(ra), len(rb)
	if al == 0 || bl == 0 {
		return 0
	}

	// две строки dp вместо полной матрицы
	prev := make([]int, bl+1)
	cur := make([]int, bl+1)
	for i := 1; i <= al; i++ {
		for j := 1; j <= bl; j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max2(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}
	return prev[bl]
}

// normalizedIndel — схожесть в [0..100] по indel-расстоянию.
func normalizedIndel(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return 200 * float64(lcsLength(ra, rb)) / float64(total)
}

func max2(a, b int) int {
	if a > b {
		return a
	}
	return b
}
