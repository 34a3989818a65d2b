package tree

import (
	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Option names read from pmml_options_.
const (
	OptionAllowMissing = "allow_missing"
	OptionNumeric      = "numeric"
)

// optionHolder is any estimator exposing pmml_options_.
type optionHolder interface {
	Option(name string, def any) any
}

// AllowMissing reports whether default children are kept. The estimator
// option wins over the conversion-wide setting.
func AllowMissing(h optionHolder, enc *schema.Encoder) bool {
	allow, ok := h.Option(OptionAllowMissing, enc.Options.AllowMissing).(bool)
	return ok && allow
}

// ConfigureSchema casts continuous split features to float, the precision
// tree thresholds were learned in. Binary features are kept as they are.
func ConfigureSchema(h optionHolder, s *schema.Schema) (*schema.Schema, error) {
	if numeric, ok := h.Option(OptionNumeric, true).(bool); ok && !numeric {
		return s, nil
	}
	enc := s.Encoder()
	features := make([]schema.Feature, s.NumberOfFeatures())
	for i, f := range s.Features() {
		if bf, ok := f.(*schema.BinaryFeature); ok {
			features[i] = bf
			continue
		}
		cf, err := schema.ToContinuousFeature(f, enc)
		if err != nil {
			return nil, err
		}
		if cf.DataType() == pmml.DataTypeFloat {
			features[i] = cf
			continue
		}
		name := "float(" + cf.Name() + ")"
		if _, err := enc.CreateDerivedField(name, pmml.OpTypeContinuous, pmml.DataTypeFloat, pmml.NewFieldRef(cf.Name())); err != nil {
			return nil, err
		}
		features[i] = schema.NewContinuousFeature(name, pmml.DataTypeFloat)
	}
	return s.WithFeatures(features), nil
}

// StripDefaultChildren returns m with every default child and
// defaultChild missing-value strategy removed. Tree models and the nodes
// that change are copied; m itself is not modified.
func StripDefaultChildren(m pmml.Model) pmml.Model {
	switch m := m.(type) {
	case *pmml.TreeModel:
		if m.MissingValueStrategy != pmml.MissingValueStrategyDefaultChild && !hasDefaultChild(m.Node) {
			return m
		}
		c := m.Copy().(*pmml.TreeModel)
		c.MissingValueStrategy = ""
		c.Node = stripNode(m.Node)
		return c
	case *pmml.MiningModel:
		if m.Segmentation == nil {
			return m
		}
		segments := make([]*pmml.Segment, len(m.Segmentation.Segments))
		changed := false
		for i, seg := range m.Segmentation.Segments {
			stripped := StripDefaultChildren(seg.Model)
			if stripped != seg.Model {
				changed = true
				copied := *seg
				copied.Model = stripped
				seg = &copied
			}
			segments[i] = seg
		}
		if !changed {
			return m
		}
		c := m.Copy().(*pmml.MiningModel)
		segmentation := *m.Segmentation
		segmentation.Segments = segments
		c.Segmentation = &segmentation
		return c
	}
	return m
}

func hasDefaultChild(n *pmml.Node) bool {
	if n == nil {
		return false
	}
	if n.DefaultChild != "" {
		return true
	}
	for _, child := range n.Nodes {
		if hasDefaultChild(child) {
			return true
		}
	}
	return false
}

func stripNode(n *pmml.Node) *pmml.Node {
	if !hasDefaultChild(n) {
		return n
	}
	c := *n
	c.DefaultChild = ""
	c.Nodes = make([]*pmml.Node, len(n.Nodes))
	for i, child := range n.Nodes {
		c.Nodes[i] = stripNode(child)
	}
	return &c
}
