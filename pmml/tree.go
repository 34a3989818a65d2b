package pmml

import "encoding/xml"

type MissingValueStrategy string

const (
	MissingValueStrategyNone           MissingValueStrategy = "none"
	MissingValueStrategyNullPrediction MissingValueStrategy = "nullPrediction"
	MissingValueStrategyDefaultChild   MissingValueStrategy = "defaultChild"
)

type NoTrueChildStrategy string

const (
	NoTrueChildReturnNull           NoTrueChildStrategy = "returnNullPrediction"
	NoTrueChildReturnLastPrediction NoTrueChildStrategy = "returnLastPrediction"
)

type TreeModel struct {
	XMLName xml.Name `xml:"TreeModel"`
	ModelBase
	MissingValueStrategy MissingValueStrategy `xml:"missingValueStrategy,attr,omitempty"`
	NoTrueChildStrategy  NoTrueChildStrategy  `xml:"noTrueChildStrategy,attr,omitempty"`
	SplitCharacteristic  string               `xml:"splitCharacteristic,attr,omitempty"`
	Node                 *Node
}

func (m *TreeModel) Copy() Model {
	c := *m
	return &c
}

type Node struct {
	XMLName            xml.Name `xml:"Node"`
	ID                 string   `xml:"id,attr,omitempty"`
	Score              string   `xml:"score,attr,omitempty"`
	RecordCount        *float64 `xml:"recordCount,attr,omitempty"`
	DefaultChild       string   `xml:"defaultChild,attr,omitempty"`
	Predicate          Predicate
	ScoreDistributions []*ScoreDistribution `xml:"ScoreDistribution"`
	Nodes              []*Node              `xml:"Node"`
}

type ScoreDistribution struct {
	Value       string   `xml:"value,attr"`
	RecordCount float64  `xml:"recordCount,attr"`
	Probability *float64 `xml:"probability,attr,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Nodes) == 0
}
