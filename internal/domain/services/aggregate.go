package services

import (
	"sort"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

// CorpusRecordAggregator computes per-play POS share rows.
type CorpusRecordAggregator struct {
	tagMap map[string]string
}

// NewCorpusRecordAggregator creates an aggregator. tagMap folds
// fine-grained tags into the tracked coarse categories; mappings to
// anything else are ignored.
func NewCorpusRecordAggregator(tagMap map[string]string) *CorpusRecordAggregator {
	tracked := make(map[string]bool, len(entities.TrackedPOS))
	for _, pos := range entities.TrackedPOS {
		tracked[pos] = true
	}

	folded := make(map[string]string, len(tagMap))
	for fine, coarse := range tagMap {
		if tracked[coarse] {
			folded[fine] = coarse
		}
	}
	return &CorpusRecordAggregator{tagMap: folded}
}

// Aggregate returns one row per play that has a year and at least one
// token, sorted ascending by year (ties by play id).
func (a *CorpusRecordAggregator) Aggregate(plays []entities.PlayTags, years map[string]int) []entities.CorpusRecord {
	records := make([]entities.CorpusRecord, 0, len(plays))

	for i := range plays {
		year, ok := years[plays[i].PlayID]
		if !ok {
			continue
		}

		counts, total := a.count(plays[i].Lines)
		if total == 0 {
			continue
		}

		share := func(pos string) float64 {
			return float64(counts[pos]) / float64(total)
		}
		records = append(records, entities.CorpusRecord{
			PlayID: plays[i].PlayID,
			Year:   year,
			Tokens: total,
			Noun:   share(entities.POSNoun),
			Verb:   share(entities.POSVerb),
			Adj:    share(entities.POSAdj),
			Advb:   share(entities.POSAdvb),
			Prep:   share(entities.POSPrep),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year < records[j].Year
		}
		return records[i].PlayID < records[j].PlayID
	})

	return records
}

// count tallies coarse categories. Every tag counts toward total.
func (a *CorpusRecordAggregator) count(lines [][]string) (map[string]int, int) {
	counts := make(map[string]int, len(entities.TrackedPOS))
	total := 0
	for _, line := range lines {
		for _, tag := range line {
			total++
			if coarse := a.coarse(tag); coarse != "" {
				counts[coarse]++
			}
		}
	}
	return counts, total
}

func (a *CorpusRecordAggregator) coarse(tag string) string {
	switch tag {
	case entities.POSNoun, entities.POSVerb, entities.POSAdj, entities.POSAdvb, entities.POSPrep:
		return tag
	}
	return a.tagMap[tag]
}
