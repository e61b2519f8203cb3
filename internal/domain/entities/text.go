package entities

// TextType selects which part of a play's text is returned.
type TextType string

const (
	TextAll        TextType = "all"
	TextAllSpoken  TextType = "all_spoken"
	TextAllStage   TextType = "all_stage"
	TextByGender   TextType = "by_gender"
	TextByRelation TextType = "by_relation"
)

// TextTypes lists the supported text selections.
var TextTypes = []TextType{TextAll, TextAllSpoken, TextAllStage, TextByGender, TextByRelation}

// TextQuery describes a text selection over a play.
// Gender is used by TextByGender, Relation by TextByRelation.
type TextQuery struct {
	Type     TextType
	Gender   Gender
	Relation RelationKind
}

// SpeakerText groups lines by who said them. Stage directions use an empty
// SpeakerID.
type SpeakerText struct {
	SpeakerID string
	Lines     []string
}
