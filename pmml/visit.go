package pmml

// ExpressionFields calls fn for every field referenced by e.
func ExpressionFields(e Expression, fn func(name string)) {
	switch e := e.(type) {
	case *FieldRef:
		fn(e.Field)
	case *NormContinuous:
		fn(e.Field)
	case *NormDiscrete:
		fn(e.Field)
	case *Discretize:
		fn(e.Field)
	case *MapValues:
		for _, pair := range e.FieldColumnPairs {
			fn(pair.Field)
		}
	case *Apply:
		for _, arg := range e.Expressions {
			ExpressionFields(arg, fn)
		}
	}
}

// PredicateFields calls fn for every field referenced by p.
func PredicateFields(p Predicate, fn func(name string)) {
	switch p := p.(type) {
	case *SimplePredicate:
		fn(p.Field)
	case *SimpleSetPredicate:
		fn(p.Field)
	case *CompoundPredicate:
		for _, child := range p.Predicates {
			PredicateFields(child, fn)
		}
	}
}

// ModelFields calls fn for every field m references directly. Models nested
// in a Segmentation are not visited; segment predicates are.
func ModelFields(m Model, fn func(name string)) {
	base := m.Base()
	if base.LocalTransformations != nil {
		for _, df := range base.LocalTransformations.DerivedFields {
			ExpressionFields(df.Expression, fn)
		}
	}
	if base.Output != nil {
		for _, of := range base.Output.OutputFields {
			if of.Expression != nil {
				ExpressionFields(of.Expression, fn)
			}
		}
	}

	switch m := m.(type) {
	case *RegressionModel:
		for _, table := range m.RegressionTables {
			for _, p := range table.NumericPredictors {
				fn(p.Name)
			}
			for _, p := range table.CategoricalPredictors {
				fn(p.Name)
			}
		}
	case *TreeModel:
		if m.Node != nil {
			nodeFields(m.Node, fn)
		}
	case *MiningModel:
		if m.Segmentation != nil {
			for _, segment := range m.Segmentation.Segments {
				PredicateFields(segment.Predicate, fn)
			}
		}
	case *RuleSetModel:
		if m.RuleSet != nil {
			for _, rule := range m.RuleSet.Rules {
				PredicateFields(rule.Predicate, fn)
			}
		}
	case *Scorecard:
		if m.Characteristics != nil {
			for _, c := range m.Characteristics.Characteristics {
				for _, a := range c.Attributes {
					PredicateFields(a.Predicate, fn)
				}
			}
		}
	case *NeuralNetwork:
		if m.NeuralInputs != nil {
			for _, input := range m.NeuralInputs.Inputs {
				ExpressionFields(input.DerivedField.Expression, fn)
			}
		}
	case *ClusteringModel:
		for _, f := range m.ClusteringFields {
			fn(f.Field)
		}
	}
}

func nodeFields(n *Node, fn func(string)) {
	PredicateFields(n.Predicate, fn)
	for _, child := range n.Nodes {
		nodeFields(child, fn)
	}
}
