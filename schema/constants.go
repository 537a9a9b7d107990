package schema

// Custom string types for type safety.
type (
	// Kind represents the inferred type of a field or value.
	Kind string

	// OutputMode represents the format of the output.
	OutputMode string

	// StatKind represents a supported statistic.
	StatKind string

	// RuleKind represents the shape of an insight rule.
	RuleKind string

	// Direction represents a sort/selection direction.
	Direction string
)

// All value kinds supported.
const (
	NullKind   Kind = "null"
	IntKind    Kind = "int"
	FloatKind  Kind = "float"
	BoolKind   Kind = "bool"
	StringKind Kind = "string"
)

// All output modes supported.
const (
	TextOut     OutputMode = "text" // default
	CSVOut      OutputMode = "csv"
	JSONOut     OutputMode = "json"
	MarkdownOut OutputMode = "markdown"
	ParquetOut  OutputMode = "parquet"
)

// All statistics supported.
const (
	CountStat        StatKind = "count"
	SumStat          StatKind = "sum"
	MeanStat         StatKind = "mean"
	MedianStat       StatKind = "median"
	MinStat          StatKind = "min"
	MaxStat          StatKind = "max"
	StdevStat        StatKind = "stdev"
	PercentileStat   StatKind = "percentile"
	WeightedMeanStat StatKind = "wmean"
)

// All insight rule kinds supported.
const (
	PremiumRule   RuleKind = "premium"
	TopRule       RuleKind = "top"
	SpreadRule    RuleKind = "spread"
	ThresholdRule RuleKind = "threshold"
)

// All directions supported.
const (
	Descending Direction = "desc" // default
	Ascending  Direction = "asc"
)

// UnknownGroup labels the group formed by records whose grouping field is
// null or missing. Partial records are grouped here, never dropped.
const UnknownGroup = "unknown"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:     {},
	CSVOut:      {},
	JSONOut:     {},
	MarkdownOut: {},
	ParquetOut:  {},
}

// ValidRuleKinds lists all valid insight rule kinds.
var ValidRuleKinds = map[RuleKind]struct{}{
	PremiumRule:   {},
	TopRule:       {},
	SpreadRule:    {},
	ThresholdRule: {},
}

// ValidDirections lists all valid directions.
var ValidDirections = map[Direction]struct{}{
	Descending: {},
	Ascending:  {},
}

// ValidSimpleStats lists the statistics that take no argument.
// Percentiles (pN) and weighted means (wmean:field) are parsed separately.
var ValidSimpleStats = map[StatKind]struct{}{
	CountStat:  {},
	SumStat:    {},
	MeanStat:   {},
	MedianStat: {},
	MinStat:    {},
	MaxStat:    {},
	StdevStat:  {},
}
