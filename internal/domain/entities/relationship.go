package entities

// RelationKind names a relation recorded on a character.
type RelationKind string

// Kinds seen in DraCor relation graphs. Parent and child are the role kinds
// that a parent_of edge is rewritten into.
const (
	RelationAssociatedWith RelationKind = "associated_with"
	RelationLoverOf        RelationKind = "lover_of"
	RelationRelatedWith    RelationKind = "related_with"
	RelationSiblings       RelationKind = "siblings"
	RelationParentOf       RelationKind = "parent_of"
	RelationParent         RelationKind = "parent"
	RelationChild          RelationKind = "child"
)

// RelationFact is one endpoint's view of a graph edge.
type RelationFact struct {
	CharacterID string       `json:"character_id"`
	Kind        RelationKind `json:"kind"`
}

// GraphNode is a node declaration of a relation graph payload.
type GraphNode struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Gender string `json:"gender,omitempty"`
}

// GraphEdge is an edge declaration of a relation graph payload.
type GraphEdge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Directed bool   `json:"directed"`
	Label    string `json:"label"`
}

// RelationGraph is the format-independent form of a relation graph payload.
type RelationGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// AsymmetricRule rewrites a directed edge label into one kind per endpoint.
type AsymmetricRule struct {
	Source RelationKind `yaml:"source" json:"source"`
	Target RelationKind `yaml:"target" json:"target"`
}

// RelationVocabulary decides how edge labels turn into relation facts.
type RelationVocabulary struct {
	Symmetric  map[RelationKind]bool
	Asymmetric map[RelationKind]AsymmetricRule
}

// DefaultRelationVocabulary returns the union of the symmetric kinds observed
// across corpus revisions plus the parent_of rule.
func DefaultRelationVocabulary() RelationVocabulary {
	return RelationVocabulary{
		Symmetric: map[RelationKind]bool{
			RelationAssociatedWith: true,
			RelationLoverOf:        true,
			RelationRelatedWith:    true,
			RelationSiblings:       true,
		},
		Asymmetric: map[RelationKind]AsymmetricRule{
			RelationParentOf: {Source: RelationParent, Target: RelationChild},
		},
	}
}

// NewRelationVocabulary builds a vocabulary from configuration values.
func NewRelationVocabulary(symmetric []string, asymmetric map[string]AsymmetricRule) RelationVocabulary {
	v := RelationVocabulary{
		Symmetric:  make(map[RelationKind]bool, len(symmetric)),
		Asymmetric: make(map[RelationKind]AsymmetricRule, len(asymmetric)),
	}
	for _, k := range symmetric {
		v.Symmetric[RelationKind(k)] = true
	}
	for label, rule := range asymmetric {
		v.Asymmetric[RelationKind(label)] = rule
	}
	return v
}
