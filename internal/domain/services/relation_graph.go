// Package services contains domain business logic.
package services

import (
	"log/slog"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

// UnrecognizedKind records an edge whose label matched no vocabulary rule.
type UnrecognizedKind struct {
	CorpusID string `json:"corpus_id"`
	PlayID   string `json:"play_id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Label    string `json:"label"`
}

// GraphCharacter is the node-level view of a character in a relation graph.
type GraphCharacter struct {
	Name      string                  `json:"name"`
	Gender    entities.Gender         `json:"gender"`
	Relations []entities.RelationKind `json:"relations"`
}

// ParsedGraph is the output of RelationGraphParser.
// Facts may contain duplicates; they collapse at merge time.
type ParsedGraph struct {
	Nodes        map[string]GraphCharacter
	Facts        []entities.RelationFact
	Unrecognized []UnrecognizedKind
}

// RelationGraphParser turns a relation graph into per-endpoint relation facts.
type RelationGraphParser struct {
	vocab  entities.RelationVocabulary
	logger *slog.Logger
}

// NewRelationGraphParser creates a parser for the given vocabulary.
func NewRelationGraphParser(vocab entities.RelationVocabulary, logger *slog.Logger) *RelationGraphParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelationGraphParser{
		vocab:  vocab,
		logger: logger,
	}
}

// Parse converts a graph into node metadata and relation facts.
// It never fails: nodes without a gender get GenderUnknown, and edges with an
// unknown label or a missing endpoint are skipped with a diagnostic.
func (p *RelationGraphParser) Parse(corpusID, playID string, graph entities.RelationGraph) *ParsedGraph {
	parsed := &ParsedGraph{
		Nodes: make(map[string]GraphCharacter, len(graph.Nodes)),
		Facts: make([]entities.RelationFact, 0, 2*len(graph.Edges)),
	}

	for _, node := range graph.Nodes {
		parsed.Nodes[node.ID] = GraphCharacter{
			Name:      node.Label,
			Gender:    entities.ParseGender(node.Gender),
			Relations: []entities.RelationKind{},
		}
	}

	for _, edge := range graph.Edges {
		label := entities.RelationKind(edge.Label)

		if edge.Source == "" || edge.Target == "" {
			p.logger.Warn("relation edge without endpoint",
				"corpus", corpusID,
				"play", playID,
				"label", edge.Label,
				"source", edge.Source,
				"target", edge.Target,
			)
			continue
		}

		if !edge.Directed || p.vocab.Symmetric[label] {
			parsed.Facts = append(parsed.Facts,
				entities.RelationFact{CharacterID: edge.Source, Kind: label},
				entities.RelationFact{CharacterID: edge.Target, Kind: label},
			)
			continue
		}

		if rule, ok := p.vocab.Asymmetric[label]; ok {
			parsed.Facts = append(parsed.Facts,
				entities.RelationFact{CharacterID: edge.Source, Kind: rule.Source},
				entities.RelationFact{CharacterID: edge.Target, Kind: rule.Target},
			)
			continue
		}

		diag := UnrecognizedKind{
			CorpusID: corpusID,
			PlayID:   playID,
			Source:   edge.Source,
			Target:   edge.Target,
			Label:    edge.Label,
		}
		parsed.Unrecognized = append(parsed.Unrecognized, diag)
		p.logger.Warn("unrecognized relation kind",
			"corpus", corpusID,
			"play", playID,
			"label", edge.Label,
			"source", edge.Source,
			"target", edge.Target,
		)
	}

	return parsed
}
