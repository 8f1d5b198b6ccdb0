package harness

import (
	"cmp"
	"slices"

	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathfinder"
)

const topArticles = 5

// ArticleCount is how many finished paths visited an article.
type ArticleCount struct {
	Title string
	Count int
}

// Stats summarizes the finished traversals of a batch. Failed traversals are
// counted in Failed and excluded from everything else.
type Stats struct {
	Total       int
	Failed      int
	Reached     int
	SuccessRate float64
	// Length figures cover successful paths only and count articles.
	AverageLength float64
	Shortest      int
	Longest       int
	Outcomes      map[domain.Outcome]int
	TopArticles   []ArticleCount
}

// Summarize computes batch statistics. A path reached the target when it
// contains targetTitle; with no title the success outcome decides.
func Summarize(runs []Run, targetTitle string) Stats {
	stats := Stats{Outcomes: make(map[domain.Outcome]int)}
	counts := make(map[string]int)
	lengthSum := 0

	for _, run := range runs {
		if run.Err != nil || run.Result == nil {
			stats.Failed++
			continue
		}
		stats.Total++
		path := run.Result.Path
		stats.Outcomes[run.Result.Outcome]++

		for _, title := range path {
			counts[title]++
		}

		if !reached(run.Result, targetTitle) {
			continue
		}
		stats.Reached++
		n := len(path)
		lengthSum += n
		if stats.Shortest == 0 || n < stats.Shortest {
			stats.Shortest = n
		}
		stats.Longest = max(stats.Longest, n)
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Reached) / float64(stats.Total) * 100
		stats.TopArticles = topN(counts, targetTitle, topArticles)
	}
	if stats.Reached > 0 {
		stats.AverageLength = float64(lengthSum) / float64(stats.Reached)
	}

	return stats
}

func reached(res *pathfinder.Result, targetTitle string) bool {
	if targetTitle == "" {
		return res.Outcome == domain.OutcomeSuccess
	}
	return res.Path.Contains(targetTitle)
}

// topN returns the n most visited articles, excluding the target. Ties are
// broken alphabetically.
func topN(counts map[string]int, exclude string, n int) []ArticleCount {
	out := make([]ArticleCount, 0, len(counts))
	for title, count := range counts {
		if title == exclude {
			continue
		}
		out = append(out, ArticleCount{Title: title, Count: count})
	}
	slices.SortFunc(out, func(a, b ArticleCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
