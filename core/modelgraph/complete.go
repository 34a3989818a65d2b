package modelgraph

import (
	"sort"

	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pmml"
)

// Usage is what a completed model graph references from the document level.
type Usage struct {
	// DataFields lists the referenced data fields in first-use order,
	// target fields first.
	DataFields []string
	// DerivedFields holds every global derived field reachable from a model.
	DerivedFields map[string]bool
}

// Complete adds the active fields to the mining schema of m and of every
// nested model, applies recorded feature importances, and reports which
// document-level fields the graph uses.
//
// A global derived field is never listed in a mining schema; the data fields
// it is computed from are listed instead. Output fields of earlier segments
// are listed in the mining schema of the segment reading them.
func Complete(m pmml.Model, enc *schema.Encoder) *Usage {
	c := &completer{enc: enc, resolved: map[string][]string{}, derived: map[string]bool{}}

	usage := &Usage{DerivedFields: c.derived}
	seen := map[string]bool{}
	if ms := m.Base().MiningSchema; ms != nil {
		for _, f := range ms.MiningFields {
			if f.UsageType != pmml.UsageTarget || seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			usage.DataFields = append(usage.DataFields, f.Name)
		}
	}
	for _, name := range c.complete(m) {
		if !seen[name] && enc.DataField(name) != nil {
			seen[name] = true
			usage.DataFields = append(usage.DataFields, name)
		}
	}
	return usage
}

type completer struct {
	enc      *schema.Encoder
	resolved map[string][]string
	derived  map[string]bool
}

// complete returns the names m needs from its enclosing scope.
func (c *completer) complete(m pmml.Model) []string {
	base := m.Base()
	defined := map[string]bool{}
	if base.LocalTransformations != nil {
		for _, df := range base.LocalTransformations.DerivedFields {
			defined[df.Name] = true
		}
	}
	if base.Output != nil {
		for _, of := range base.Output.OutputFields {
			defined[of.Name] = true
		}
	}

	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if defined[name] || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	pmml.ModelFields(m, add)
	if mm, ok := m.(*pmml.MiningModel); ok && mm.Segmentation != nil {
		produced := map[string]bool{}
		for _, segment := range mm.Segmentation.Segments {
			for _, name := range c.complete(segment.Model) {
				if !produced[name] {
					add(name)
				}
			}
			if output := segment.Model.Base().Output; output != nil {
				for _, of := range output.OutputFields {
					produced[of.Name] = true
				}
			}
		}
	}

	var needed []string
	neededSeen := map[string]bool{}
	for _, name := range names {
		for _, r := range c.resolve(name) {
			if !neededSeen[r] {
				neededSeen[r] = true
				needed = append(needed, r)
			}
		}
	}

	if base.MiningSchema == nil {
		base.MiningSchema = &pmml.MiningSchema{}
	}
	for _, name := range needed {
		if base.MiningSchema.Field(name) != nil {
			continue
		}
		base.MiningSchema.MiningFields = append(base.MiningSchema.MiningFields, &pmml.MiningField{Name: name})
	}
	c.applyImportances(m)
	return needed
}

// resolve maps a referenced name to the non-derived names behind it.
func (c *completer) resolve(name string) []string {
	if r, ok := c.resolved[name]; ok {
		return r
	}
	df := c.enc.DerivedField(name)
	if df == nil {
		c.resolved[name] = []string{name}
		return c.resolved[name]
	}
	c.derived[name] = true
	// guards against a field referring to itself
	c.resolved[name] = nil

	var out []string
	seen := map[string]bool{}
	pmml.ExpressionFields(df.Expression, func(ref string) {
		for _, r := range c.resolve(ref) {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	})
	c.resolved[name] = out
	return out
}

func (c *completer) applyImportances(m pmml.Model) {
	importances := c.enc.FeatureImportances(m)
	if len(importances) == 0 {
		return
	}
	names := make([]string, 0, len(importances))
	for name := range importances {
		names = append(names, name)
	}
	sort.Strings(names)

	ms := m.Base().MiningSchema
	for _, name := range names {
		importance := importances[name]
		target := name
		if resolved := c.resolve(name); len(resolved) == 1 {
			target = resolved[0]
		}
		f := ms.Field(target)
		if f == nil || f.UsageType == pmml.UsageTarget {
			continue
		}
		if f.Importance != nil {
			importance += *f.Importance
		}
		f.Importance = pmml.Float(importance)
	}
}
