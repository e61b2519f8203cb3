package entities

// Coarse part-of-speech categories tracked by aggregation.
const (
	POSNoun = "NOUN"
	POSVerb = "VERB"
	POSAdj  = "ADJ"
	POSAdvb = "ADVB"
	POSPrep = "PREP"
)

// TrackedPOS lists the coarse categories in table column order.
var TrackedPOS = []string{POSNoun, POSVerb, POSAdj, POSAdvb, POSPrep}

// PlayTags is the POS-tagged text of one play. Each line is a tag stream.
type PlayTags struct {
	PlayID string
	Lines  [][]string
}

// CorpusRecord is one row of the per-corpus POS share table.
// Shares are fractions of Tokens; their sum may be below 1.
type CorpusRecord struct {
	PlayID string  `json:"play_id"`
	Year   int     `json:"year"`
	Tokens int     `json:"tokens"`
	Noun   float64 `json:"NOUN"`
	Verb   float64 `json:"VERB"`
	Adj    float64 `json:"ADJ"`
	Advb   float64 `json:"ADVB"`
	Prep   float64 `json:"PREP"`
}

// Share returns the share for a coarse category name, or 0.
func (r CorpusRecord) Share(pos string) float64 {
	switch pos {
	case POSNoun:
		return r.Noun
	case POSVerb:
		return r.Verb
	case POSAdj:
		return r.Adj
	case POSAdvb:
		return r.Advb
	case POSPrep:
		return r.Prep
	default:
		return 0
	}
}
