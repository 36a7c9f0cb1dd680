package intent

import (
	"fmt"
	"regexp"
	"strings"
)

// Labels produced by the default rule table.
const (
	Greeting  = "greeting"
	FAQ       = "faq"
	Menu      = "menu"
	Order     = "order"
	Complaint = "complaint"
	Goodbye   = "goodbye"
	Unknown   = "unknown"
)

// Rule maps one intent label to the alternations that select it.
// Each pattern is a `|` separated list of words or phrases matched as whole words.
type Rule struct {
	Intent   string
	Patterns []string
}

type compiledRule struct {
	intent   string
	patterns []*regexp.Regexp
}

// Go's \b only knows ASCII word characters, so "menú" or "adiós" would never
// close a boundary. Letters and digits in any script count as word characters here.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

// WholeWord compiles a `|` separated alternation into a case-insensitive
// whole-word matcher.
func WholeWord(alternation string) (*regexp.Regexp, error) {
	alternation = strings.TrimSpace(alternation)
	if alternation == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	return regexp.Compile(`(?i)` + wordStart + `(?:` + alternation + `)` + wordEnd)
}

// DefaultRules is the rule table used by the business chatbot. Order matters.
func DefaultRules() []Rule {
	return []Rule{
		{Intent: Greeting, Patterns: []string{
			`hola|buenos?|buenas?|saludos?|hi|hello`,
			`qué tal|que tal|cómo está|cómo están`,
		}},
		{Intent: FAQ, Patterns: []string{
			`horario|horarios|abren|cierran|cuando|cuándo|hora`,
			`ubicación|ubicacion|dirección|direccion|donde|dónde`,
			`teléfono|telefono|contacto|número|numero`,
			`delivery|envío|envio|reparto`,
			`pago|pagos|efectivo|tarjeta`,
		}},
		{Intent: Menu, Patterns: []string{
			`menú|menu|carta|precios?`,
			`qué tienen|que tienen|qué hay|que hay|productos?|comida`,
			`sabores?|opciones?|variedades?`,
			`promoción|promocion|promociones|ofertas?|descuento`,
			`especialidad|recomiendan|mejor`,
		}},
		{Intent: Order, Patterns: []string{
			`quiero|ordenar|pedido|pedir|solicitar`,
			`comprar|llevar|para llevar`,
			`cuánto cuesta|cuanto cuesta|cuánto vale|cuanto vale|precio de`,
		}},
		{Intent: Complaint, Patterns: []string{
			`problema|queja|reclamo|malo|mala`,
			`no funciona|no sirve|error`,
			`demora|tardó|tardo|lento|espera`,
		}},
		{Intent: Goodbye, Patterns: []string{
			`adiós|adios|chao|bye|hasta luego|gracias`,
			`nos vemos|hasta pronto`,
		}},
	}
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.Intent == "" {
			return nil, fmt.Errorf("rule with empty intent")
		}
		if seen[r.Intent] {
			return nil, fmt.Errorf("duplicate rule for intent %q", r.Intent)
		}
		seen[r.Intent] = true

		cr := compiledRule{intent: r.Intent}
		for _, p := range r.Patterns {
			re, err := WholeWord(p)
			if err != nil {
				return nil, fmt.Errorf("intent %q pattern %q: %w", r.Intent, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		compiled = append(compiled, cr)
	}
	return compiled, nil
}
