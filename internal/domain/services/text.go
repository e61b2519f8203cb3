package services

import (
	"errors"
	"fmt"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

// ErrUnknownTextType is returned for an unsupported text selection.
var ErrUnknownTextType = errors.New("unknown text type")

// SelectText returns the lines of play chosen by q, grouped by speaker.
// Speakers come in character id order; stage directions, when included,
// come last under an empty speaker id.
func SelectText(play *entities.Play, q entities.TextQuery) ([]entities.SpeakerText, error) {
	switch q.Type {
	case entities.TextAll:
		texts := spokenWhere(play, func(*entities.Character) bool { return true })
		return append(texts, stageText(play)), nil
	case entities.TextAllSpoken:
		return spokenWhere(play, func(*entities.Character) bool { return true }), nil
	case entities.TextAllStage:
		return []entities.SpeakerText{stageText(play)}, nil
	case entities.TextByGender:
		return spokenWhere(play, func(c *entities.Character) bool { return c.Gender == q.Gender }), nil
	case entities.TextByRelation:
		return spokenWhere(play, func(c *entities.Character) bool { return c.HasRelation(q.Relation) }), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTextType, q.Type)
	}
}

// ParseTextType validates a text type name.
func ParseTextType(s string) (entities.TextType, error) {
	for _, t := range entities.TextTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %v)", ErrUnknownTextType, s, entities.TextTypes)
}

// ValidateTextQuery reports whether q names a supported text selection.
func ValidateTextQuery(q entities.TextQuery) error {
	_, err := ParseTextType(string(q.Type))
	return err
}

// FlattenText joins all selected lines into one slice.
func FlattenText(texts []entities.SpeakerText) []string {
	var lines []string
	for _, t := range texts {
		lines = append(lines, t.Lines...)
	}
	return lines
}

func spokenWhere(play *entities.Play, keep func(*entities.Character) bool) []entities.SpeakerText {
	var texts []entities.SpeakerText
	for _, id := range play.CharacterIDs() {
		c := play.Characters[id]
		if !keep(c) {
			continue
		}
		texts = append(texts, entities.SpeakerText{SpeakerID: id, Lines: c.Spoken})
	}
	return texts
}

func stageText(play *entities.Play) entities.SpeakerText {
	return entities.SpeakerText{Lines: play.StageDirections}
}
