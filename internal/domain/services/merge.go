package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

// ErrMergeInconsistency marks a relation that references a character
// missing from the character table.
var ErrMergeInconsistency = errors.New("merge inconsistency")

// MergeError identifies the play and character id that broke a merge.
type MergeError struct {
	CorpusID    string
	PlayID      string
	CharacterID string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("corpus %s, play %s: relation references unknown character %q",
		e.CorpusID, e.PlayID, e.CharacterID)
}

// Unwrap lets errors.Is match ErrMergeInconsistency.
func (e *MergeError) Unwrap() error {
	return ErrMergeInconsistency
}

// PlayInput is everything the merger needs for one play.
// Graph may be nil when a play has no relation data.
type PlayInput struct {
	Meta            entities.PlayMeta
	Characters      []entities.RawCharacter
	StageDirections []string
	Graph           *ParsedGraph
}

// CharacterRecordMerger builds the unified per-play record.
type CharacterRecordMerger struct {
	reconciler *IdentifierReconciler
	logger     *slog.Logger
}

// NewCharacterRecordMerger creates a merger using the given reconciler.
func NewCharacterRecordMerger(reconciler *IdentifierReconciler, logger *slog.Logger) *CharacterRecordMerger {
	if reconciler == nil {
		reconciler = NewIdentifierReconciler(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CharacterRecordMerger{
		reconciler: reconciler,
		logger:     logger,
	}
}

// Merge builds a Play from character, stage and relation data.
// A relation pointing at an unknown character aborts the whole play with a
// *MergeError; no partial record is returned.
func (m *CharacterRecordMerger) Merge(in PlayInput) (*entities.Play, error) {
	play := entities.NewPlay(in.Meta.CorpusID, in.Meta.PlayID)
	play.Title = in.Meta.Title
	play.Year = in.Meta.Year

	m.addCharacters(play, in.Characters)
	play.StageDirections = append(play.StageDirections, in.StageDirections...)

	if in.Graph == nil {
		return play, nil
	}

	m.fillGenders(play, in.Graph)

	for _, fact := range m.reconciler.CanonicalFacts(in.Graph.Facts) {
		character := play.Character(fact.CharacterID)
		if character == nil {
			mergeErr := &MergeError{
				CorpusID:    in.Meta.CorpusID,
				PlayID:      in.Meta.PlayID,
				CharacterID: fact.CharacterID,
			}
			m.logger.Error("merge inconsistency",
				"corpus", in.Meta.CorpusID,
				"play", in.Meta.PlayID,
				"character_id", fact.CharacterID,
				"kind", string(fact.Kind),
			)
			return nil, mergeErr
		}
		character.AddRelation(fact.Kind)
	}

	return play, nil
}

// addCharacters creates one character per payload entry. Entries that
// reconcile to an id already seen contribute their spoken lines only.
func (m *CharacterRecordMerger) addCharacters(play *entities.Play, raw []entities.RawCharacter) {
	for i := range raw {
		rc := &raw[i]
		id := m.reconciler.Canonical(rc.ID)

		character := play.Character(id)
		if character == nil {
			character = entities.NewCharacter(id, rc.Label, entities.ParseGender(rc.Gender), rc.IsGroup)
			play.Characters[id] = character
		}
		character.Spoken = append(character.Spoken, rc.Text...)
	}
}

// fillGenders copies graph node genders onto characters whose payload
// gender is unknown.
func (m *CharacterRecordMerger) fillGenders(play *entities.Play, graph *ParsedGraph) {
	for nodeID, node := range graph.Nodes {
		if node.Gender == entities.GenderUnknown {
			continue
		}
		character := play.Character(m.reconciler.Canonical(nodeID))
		if character != nil && character.Gender == entities.GenderUnknown {
			character.Gender = node.Gender
		}
	}
}
