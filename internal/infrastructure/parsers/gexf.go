package parsers

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/drama-core/internal/domain/entities"
)

type gexfDocument struct {
	Graph gexfGraph `xml:"graph"`
}

type gexfGraph struct {
	DefaultEdgeType string           `xml:"defaultedgetype,attr"`
	Attributes      []gexfAttributes `xml:"attributes"`
	Nodes           []gexfNode       `xml:"nodes>node"`
	Edges           []gexfEdge       `xml:"edges>edge"`
}

type gexfAttributes struct {
	Class      string          `xml:"class,attr"`
	Attributes []gexfAttribute `xml:"attribute"`
}

type gexfAttribute struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
}

type gexfNode struct {
	ID        string         `xml:"id,attr"`
	Label     string         `xml:"label,attr"`
	AttValues []gexfAttValue `xml:"attvalues>attvalue"`
}

type gexfAttValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

type gexfEdge struct {
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
	Type   string `xml:"type,attr"`
	Label  string `xml:"label,attr"`
}

// ParseGEXF decodes a relation graph in GEXF format.
//
// Node gender is read from the attvalue whose attribute is titled "gender".
// An edge without a type attribute takes the graph's defaultedgetype; a
// graph without one is undirected. Edges missing an endpoint are kept as
// they are; the relation graph parser drops them.
func ParseGEXF(r io.Reader) (*entities.RelationGraph, error) {
	var doc gexfDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing GEXF: %w", err)
	}

	genderKeys := genderAttributeIDs(doc.Graph.Attributes)

	graph := &entities.RelationGraph{
		Nodes: make([]entities.GraphNode, 0, len(doc.Graph.Nodes)),
		Edges: make([]entities.GraphEdge, 0, len(doc.Graph.Edges)),
	}

	for _, n := range doc.Graph.Nodes {
		node := entities.GraphNode{ID: n.ID, Label: CleanText(n.Label)}
		for _, av := range n.AttValues {
			if genderKeys[av.For] {
				node.Gender = av.Value
				break
			}
		}
		graph.Nodes = append(graph.Nodes, node)
	}

	for _, e := range doc.Graph.Edges {
		edgeType := e.Type
		if edgeType == "" {
			edgeType = doc.Graph.DefaultEdgeType
		}
		graph.Edges = append(graph.Edges, entities.GraphEdge{
			Source:   e.Source,
			Target:   e.Target,
			Directed: strings.EqualFold(edgeType, "directed"),
			Label:    e.Label,
		})
	}

	return graph, nil
}

// genderAttributeIDs returns the node attribute ids that carry gender.
// "gender" itself is always accepted since some exports skip declarations.
func genderAttributeIDs(decls []gexfAttributes) map[string]bool {
	ids := map[string]bool{"gender": true}
	for _, block := range decls {
		if block.Class != "" && block.Class != "node" {
			continue
		}
		for _, a := range block.Attributes {
			if strings.EqualFold(a.Title, "gender") {
				ids[a.ID] = true
			}
		}
	}
	return ids
}
