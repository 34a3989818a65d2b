// Standard attribute keys for conversion logging.
//
// Keys follow a hierarchical naming convention ("estimator.type",
// "schema.features") so that logs can be filtered by category.

package log

// Estimator context
const (
	// EstimatorKey identifies the type key of the object being encoded.
	// Example: "sklearn.linear_model.LogisticRegression"
	EstimatorKey = "estimator.type"

	// StepKey names a pipeline step or ensemble member.
	StepKey = "estimator.step"

	// VersionKey records the library version the object was pickled with.
	VersionKey = "estimator.version"

	// OperationKey specifies the conversion phase being performed.
	OperationKey = "convert.operation"

	// ComponentKey identifies which package performs the operation.
	ComponentKey = "convert.component"

	// FileKey records the input document path.
	FileKey = "convert.file"
)

// Schema and model shape
const (
	FeaturesKey = "schema.features"
	ClassesKey  = "schema.classes"
	TargetsKey  = "schema.targets"
	SegmentsKey = "model.segments"
	ModelKey    = "model.type"
)

// Performance
const (
	DurationMsKey = "perf.duration_ms"
	BatchSizeKey  = "perf.batch_size"
)

// Error and warning context
const (
	// ErrorKindKey carries the conversion error kind, see errors.KindOf.
	ErrorKindKey = "error.kind"

	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information extracted from
	// cockroachdb/errors values.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey carries the nearest registered type key for an
	// unsupported estimator.
	SuggestionKey = "error.suggestion"
)

// Standard operation values.
const (
	OperationDecode  = "decode"
	OperationConvert = "convert"
	OperationEncode  = "encode"
	OperationMarshal = "marshal"
)
