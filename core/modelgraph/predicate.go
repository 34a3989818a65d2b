package modelgraph

import "github.com/YuminosukeSato/skpmml/pmml"

// ValuesPredicate selects the rows whose field is one of values: a
// SimplePredicate for a single value, a SimpleSetPredicate otherwise.
func ValuesPredicate(field string, dataType pmml.DataType, values []string) pmml.Predicate {
	if len(values) == 1 {
		return &pmml.SimplePredicate{Field: field, Operator: pmml.OpEqual, Value: values[0]}
	}
	return &pmml.SimpleSetPredicate{Field: field, BooleanOperator: pmml.SetIsIn, Array: typedArray(dataType, values)}
}

// NotValuesPredicate is the complement of ValuesPredicate.
func NotValuesPredicate(field string, dataType pmml.DataType, values []string) pmml.Predicate {
	if len(values) == 1 {
		return &pmml.SimplePredicate{Field: field, Operator: pmml.OpNotEqual, Value: values[0]}
	}
	return &pmml.SimpleSetPredicate{Field: field, BooleanOperator: pmml.SetIsNotIn, Array: typedArray(dataType, values)}
}

// MissingPredicate matches rows where field has no value.
func MissingPredicate(field string) pmml.Predicate {
	return &pmml.SimplePredicate{Field: field, Operator: pmml.OpIsMissing}
}

func typedArray(dataType pmml.DataType, values []string) *pmml.Array {
	array := pmml.NewStringArray(values)
	switch dataType {
	case pmml.DataTypeInteger:
		array.Type = "int"
	case pmml.DataTypeDouble, pmml.DataTypeFloat:
		array.Type = "real"
	}
	return array
}
