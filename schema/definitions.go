package schema

// StatDefinition describes one supported statistic for display purposes.
type StatDefinition struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
	Formula string `json:"formula"`
}

// RuleDefinition describes one supported insight rule kind.
type RuleDefinition struct {
	Kind       RuleKind `json:"kind"`
	Purpose    string   `json:"purpose"`
	Comparison string   `json:"comparison"`
	Requires   string   `json:"requires"`
}

// DefinitionsRenderModel contains all data needed for displaying the
// statistic and rule definitions.
type DefinitionsRenderModel struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Statistics  []StatDefinition `json:"statistics"`
	Rules       []RuleDefinition `json:"rules"`
}
