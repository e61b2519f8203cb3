package services

import (
	"errors"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

// OutcomeStatus tags the result of processing one play.
type OutcomeStatus string

const (
	OutcomeMerged OutcomeStatus = "merged"
	OutcomeFailed OutcomeStatus = "failed"
)

// PlayOutcome is the per-play result of a batch. Play is set only when
// Status is OutcomeMerged; Err only when it is OutcomeFailed.
type PlayOutcome struct {
	CorpusID     string
	PlayID       string
	Status       OutcomeStatus
	Play         *entities.Play
	Unrecognized []UnrecognizedKind
	Err          error
}

// IsMergeInconsistency reports whether the outcome failed at merge time.
func (o PlayOutcome) IsMergeInconsistency() bool {
	return errors.Is(o.Err, ErrMergeInconsistency)
}

// BatchReport collects the outcomes of a batch in input order.
type BatchReport struct {
	Outcomes []PlayOutcome
}

// Merged returns the successfully merged plays.
func (r *BatchReport) Merged() []*entities.Play {
	plays := make([]*entities.Play, 0, len(r.Outcomes))
	for i := range r.Outcomes {
		if r.Outcomes[i].Status == OutcomeMerged {
			plays = append(plays, r.Outcomes[i].Play)
		}
	}
	return plays
}

// Failures returns the failed outcomes.
func (r *BatchReport) Failures() []PlayOutcome {
	var failed []PlayOutcome
	for i := range r.Outcomes {
		if r.Outcomes[i].Status == OutcomeFailed {
			failed = append(failed, r.Outcomes[i])
		}
	}
	return failed
}

// RawPlay is a play as delivered by the payload parsers.
type RawPlay struct {
	Meta            entities.PlayMeta
	Characters      []entities.RawCharacter
	StageDirections []string
	Graph           *entities.RelationGraph
}

// BatchMerger runs parse and merge over independent plays.
type BatchMerger struct {
	parser *RelationGraphParser
	merger *CharacterRecordMerger
}

// NewBatchMerger creates a batch merger.
func NewBatchMerger(parser *RelationGraphParser, merger *CharacterRecordMerger) *BatchMerger {
	return &BatchMerger{
		parser: parser,
		merger: merger,
	}
}

// Process parses and merges a single play. It shares no state with other
// calls and may run concurrently.
func (b *BatchMerger) Process(raw RawPlay) PlayOutcome {
	outcome := PlayOutcome{
		CorpusID: raw.Meta.CorpusID,
		PlayID:   raw.Meta.PlayID,
	}

	input := PlayInput{
		Meta:            raw.Meta,
		Characters:      raw.Characters,
		StageDirections: raw.StageDirections,
	}
	if raw.Graph != nil {
		input.Graph = b.parser.Parse(raw.Meta.CorpusID, raw.Meta.PlayID, *raw.Graph)
		outcome.Unrecognized = input.Graph.Unrecognized
	}

	play, err := b.merger.Merge(input)
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Err = err
		return outcome
	}

	outcome.Status = OutcomeMerged
	outcome.Play = play
	return outcome
}

// MergeAll processes every play; a failing play never affects its siblings.
func (b *BatchMerger) MergeAll(plays []RawPlay) *BatchReport {
	report := &BatchReport{Outcomes: make([]PlayOutcome, 0, len(plays))}
	for i := range plays {
		report.Outcomes = append(report.Outcomes, b.Process(plays[i]))
	}
	return report
}
