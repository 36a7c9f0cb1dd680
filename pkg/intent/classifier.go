package intent

import (
	"regexp"
	"strconv"
	"strings"

	"ai-chatbot-be/pkg/retrieval"
)

// Classifier is a stateless first-match-wins matcher over an ordered rule table.
// It is safe for concurrent use.
type Classifier struct {
	rules []compiledRule
	index map[string]int
}

func NewClassifier(rules []Rule) (*Classifier, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(compiled))
	for i, r := range compiled {
		index[r.intent] = i
	}
	return &Classifier{rules: compiled, index: index}, nil
}

// MustNewClassifier panics on an invalid rule table. Meant for DefaultRules.
func MustNewClassifier(rules []Rule) *Classifier {
	c, err := NewClassifier(rules)
	if err != nil {
		panic(err)
	}
	return c
}

// Detect returns the first intent (in rule order) with any matching pattern.
// Without a rule match the hits decide: the more frequent of faq and catalog
// wins, faq on a tie. Detect never fails.
func (c *Classifier) Detect(text string, hits []retrieval.Hit) string {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		for _, p := range r.patterns {
			if p.MatchString(lower) {
				return r.intent
			}
		}
	}

	var faqs, catalog int
	for _, h := range hits {
		switch h.Document.SourceKind {
		case retrieval.SourceFAQ:
			faqs++
		case retrieval.SourceCatalog:
			catalog++
		}
	}
	switch {
	case faqs == 0 && catalog == 0:
		return Unknown
	case faqs >= catalog:
		return FAQ
	default:
		return Menu
	}
}

// Confidence is the share of the intent's patterns that match the text,
// plus 0.3 when at least one matched, capped at 1.
func (c *Classifier) Confidence(text, intent string) float64 {
	if intent == Unknown {
		return 0.1
	}
	i, ok := c.index[intent]
	if !ok || len(c.rules[i].patterns) == 0 {
		return 0.5
	}

	lower := strings.ToLower(text)
	patterns := c.rules[i].patterns
	matched := 0
	for _, p := range patterns {
		if p.MatchString(lower) {
			matched++
		}
	}

	score := float64(matched) / float64(len(patterns))
	if matched > 0 {
		score += 0.3
	}
	if score > 1 {
		score = 1
	}
	return score
}

var (
	quantityPattern = regexp.MustCompile(`(\d+)\s*(unidades?|piezas?|porciones?)?`)
	timePattern     = regexp.MustCompile(`(\d{1,2}):?(\d{2})?\s*(am|pm)?`)
)

// KnownProducts are the product words picked out of order messages.
var KnownProducts = []string{
	"pizza", "hamburguesa", "taco", "burrito", "quesadilla",
	"café", "refresco", "agua", "jugo", "cerveza",
	"ensalada", "sopa", "postre", "helado",
}

// ExtractEntities pulls the few structured values the rules care about.
// The result is informational; nothing downstream branches on it.
func ExtractEntities(text, intent string) map[string]interface{} {
	entities := make(map[string]interface{})
	lower := strings.ToLower(text)

	switch intent {
	case Order:
		if m := quantityPattern.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				entities["quantity"] = n
			}
		}
		var products []string
		for _, p := range KnownProducts {
			if strings.Contains(lower, p) {
				products = append(products, p)
			}
		}
		if len(products) > 0 {
			entities["products"] = products
		}
	case FAQ:
		if m := timePattern.FindString(lower); m != "" {
			entities["time"] = strings.TrimSpace(m)
		}
	}
	return entities
}
