// Package entities contains core domain data structures.
package entities

import "sort"

// PlayMeta is the corpus-listing view of a play, before any text is fetched.
type PlayMeta struct {
	CorpusID string `json:"corpus_id"`
	PlayID   string `json:"play_id"`
	Title    string `json:"title,omitempty"`
	Year     int    `json:"year,omitempty"` // 0 when the upstream has no normalized year
}

// Play is the unified per-play record produced by the merge stage.
// It exclusively owns its characters and stage directions.
type Play struct {
	CorpusID        string                `json:"corpus_id"`
	PlayID          string                `json:"play_id"`
	Title           string                `json:"title,omitempty"`
	Year            int                   `json:"year,omitempty"`
	Characters      map[string]*Character `json:"characters"`
	StageDirections []string              `json:"stage_directions"`
}

// NewPlay creates an empty play record.
func NewPlay(corpusID, playID string) *Play {
	return &Play{
		CorpusID:        corpusID,
		PlayID:          playID,
		Characters:      make(map[string]*Character),
		StageDirections: []string{},
	}
}

// Character returns the character with the given canonical id, or nil.
func (p *Play) Character(id string) *Character {
	return p.Characters[id]
}

// CharacterIDs returns the character ids in lexical order.
func (p *Play) CharacterIDs() []string {
	ids := make([]string, 0, len(p.Characters))
	for id := range p.Characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Key returns the (corpus, play) identity as a single string.
func (p *Play) Key() string {
	return PlayKey(p.CorpusID, p.PlayID)
}

// PlayKey joins a corpus id and a play id.
func PlayKey(corpusID, playID string) string {
	return corpusID + "/" + playID
}
