package services

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// keynessPunctuation extends ASCII punctuation with the dashes, ellipsis and
// guillemets common in the corpora.
const keynessPunctuation = "—…«»"

// KeyItem is a token with its log-likelihood keyness score. Positive
// scores mark items overused in the target corpus.
type KeyItem struct {
	Item          string  `json:"item"`
	TargetFreq    int     `json:"target_freq"`
	ReferenceFreq int     `json:"reference_freq"`
	LogLikelihood float64 `json:"log_likelihood"`
}

// Keyness compares two corpora. Each corpus is a list of plays, each play a
// list of lines. Punctuation-only tokens, stop words and the "None"/"null"
// placeholders are dropped before counting. Results are sorted by score,
// highest first.
func Keyness(target, reference [][]string, stops []string) []KeyItem {
	stopSet := make(map[string]bool, len(stops))
	for _, s := range stops {
		stopSet[s] = true
	}

	targetFreq, targetTotal := countItems(target, stopSet)
	refFreq, refTotal := countItems(reference, stopSet)
	if targetTotal == 0 || refTotal == 0 {
		return []KeyItem{}
	}

	seen := make(map[string]bool, len(targetFreq)+len(refFreq))
	items := make([]KeyItem, 0, len(targetFreq)+len(refFreq))
	add := func(item string) {
		if seen[item] {
			return
		}
		seen[item] = true
		a, b := targetFreq[item], refFreq[item]
		items = append(items, KeyItem{
			Item:          item,
			TargetFreq:    a,
			ReferenceFreq: b,
			LogLikelihood: logLikelihood(a, b, targetTotal, refTotal),
		})
	}
	for item := range targetFreq {
		add(item)
	}
	for item := range refFreq {
		add(item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].LogLikelihood != items[j].LogLikelihood {
			return items[i].LogLikelihood > items[j].LogLikelihood
		}
		return items[i].Item < items[j].Item
	})
	return items
}

// logLikelihood is Dunning's G2, signed by the direction of the difference.
func logLikelihood(a, b, c, d int) float64 {
	fa, fb, fc, fd := float64(a), float64(b), float64(c), float64(d)
	e1 := fc * (fa + fb) / (fc + fd)
	e2 := fd * (fa + fb) / (fc + fd)

	g2 := 0.0
	if a > 0 {
		g2 += fa * math.Log(fa/e1)
	}
	if b > 0 {
		g2 += fb * math.Log(fb/e2)
	}
	g2 *= 2

	if fa/fc < fb/fd {
		return -g2
	}
	return g2
}

func countItems(corpus [][]string, stops map[string]bool) (map[string]int, int) {
	freq := make(map[string]int)
	total := 0
	for _, play := range corpus {
		for _, line := range play {
			for _, item := range strings.Fields(line) {
				if skipItem(item, stops) {
					continue
				}
				freq[item]++
				total++
			}
		}
	}
	return freq, total
}

func skipItem(item string, stops map[string]bool) bool {
	if stops[item] || item == "None" || item == "null" {
		return true
	}
	for _, r := range item {
		if !isKeynessPunct(r) {
			return false
		}
	}
	return true
}

func isKeynessPunct(r rune) bool {
	if r <= unicode.MaxASCII {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}
	return strings.ContainsRune(keynessPunctuation, r)
}
