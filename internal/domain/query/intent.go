package query

// Intent names.
const (
	IntentFindProduct   = "find_product"
	IntentInformational = "informational"
)

// DefaultConfidence is used when a classifier does not score its decision.
const DefaultConfidence = 1.0

// Intent is the coarse purpose of a query.
type Intent struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// NewIntent creates an intent with the default confidence.
func NewIntent(name string) Intent {
	return Intent{Name: name, Confidence: DefaultConfidence}
}

// NewScoredIntent creates an intent with a confidence clamped to [0,1].
func NewScoredIntent(name string, confidence float64) Intent {
	confidence = max(0, min(1, confidence))
	return Intent{Name: name, Confidence: confidence}
}
