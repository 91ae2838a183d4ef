package dispatcher

import "strings"

// Category is the coarse routing decision for a query.
type Category string

const (
	// CategoryDirect means the dispatcher answers the query itself.
	CategoryDirect Category = "direct"
	// CategoryAgent means exactly one agent should handle the query.
	CategoryAgent Category = "agent"
	// CategoryWorkflow means the query needs multi-step orchestration.
	CategoryWorkflow Category = "workflow"
)

// Classification is the routing verdict for a single query.
type Classification struct {
	Category      Category `json:"category"`
	TargetAgentID string   `json:"target_agent_id,omitempty"`
	Confidence    float64  `json:"confidence"`
}

// Classifier inspects a query and decides where it should go. Implementations
// must be deterministic for a given input and must not block on agents.
type Classifier interface {
	Classify(query string, queryCtx map[string]any) Classification
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(query string, queryCtx map[string]any) Classification

// Classify implements Classifier.
func (f ClassifierFunc) Classify(query string, queryCtx map[string]any) Classification {
	return f(query, queryCtx)
}

// Rule binds a set of trigger keywords to a routing target. The first rule
// whose keyword appears in the query wins, so order rules from most to least
// specific.
type Rule struct {
	Keywords      []string
	Category      Category
	TargetAgentID string
	Confidence    float64
}

const defaultRuleConfidence = 0.8

// multiStepMarkers are phrasing patterns that signal a query is really a
// sequence of tasks.
var multiStepMarkers = []string{
	" and then ",
	" then ",
	" after that ",
	"first,",
	"step 1",
	"step by step",
}

// KeywordClassifier routes on substring matches against a configured rule
// table. Multi-step phrasing is detected before any rule is consulted.
type KeywordClassifier struct {
	rules []Rule
}

// NewKeywordClassifier constructs a classifier over the given rule table.
// A nil table still detects multi-step phrasing and defaults the rest to the
// direct route.
func NewKeywordClassifier(rules []Rule) *KeywordClassifier {
	return &KeywordClassifier{rules: rules}
}

// Classify implements Classifier.
func (c *KeywordClassifier) Classify(query string, _ map[string]any) Classification {
	q := strings.ToLower(query)

	for _, marker := range multiStepMarkers {
		if strings.Contains(q, marker) {
			return Classification{Category: CategoryWorkflow, Confidence: 0.9}
		}
	}

	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(q, strings.ToLower(kw)) {
				conf := rule.Confidence
				if conf == 0 {
					conf = defaultRuleConfidence
				}
				cat := rule.Category
				if cat == "" {
					cat = CategoryAgent
				}
				return Classification{
					Category:      cat,
					TargetAgentID: rule.TargetAgentID,
					Confidence:    conf,
				}
			}
		}
	}

	return Classification{Category: CategoryDirect, Confidence: 1.0}
}
