package entities

import "strings"

// Gender is the enumerated gender of a character.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ParseGender maps a raw upstream value to a Gender.
// Anything unrecognized, including the empty string, is GenderUnknown.
func ParseGender(raw string) Gender {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// Character is a speaker of a play, keyed by its canonical id.
type Character struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Gender    Gender         `json:"gender"`
	IsGroup   bool           `json:"is_group"`
	Spoken    []string       `json:"spoken"`
	Relations []RelationKind `json:"relations"`
}

// NewCharacter creates a character with empty spoken and relation lists.
func NewCharacter(id, name string, gender Gender, isGroup bool) *Character {
	return &Character{
		ID:        id,
		Name:      name,
		Gender:    gender,
		IsGroup:   isGroup,
		Spoken:    []string{},
		Relations: []RelationKind{},
	}
}

// AddRelation inserts kind into the relation set.
// It returns false when the kind was already present.
func (c *Character) AddRelation(kind RelationKind) bool {
	if c.HasRelation(kind) {
		return false
	}
	c.Relations = append(c.Relations, kind)
	return true
}

// HasRelation reports whether the character carries the given kind.
func (c *Character) HasRelation(kind RelationKind) bool {
	for _, k := range c.Relations {
		if k == kind {
			return true
		}
	}
	return false
}

// RawCharacter is one entry of the spoken-text-by-character payload,
// before identifier reconciliation.
type RawCharacter struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Gender  string   `json:"gender"`
	IsGroup bool     `json:"isGroup"`
	Text    []string `json:"text"`
}
