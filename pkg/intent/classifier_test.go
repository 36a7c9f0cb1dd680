package intent

import (
	"testing"

	"ai-chatbot-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hits(kinds ...retrieval.SourceKind) []retrieval.Hit {
	out := make([]retrieval.Hit, len(kinds))
	for i, k := range kinds {
		out[i] = retrieval.Hit{Document: retrieval.Document{SourceKind: k}, Score: 0.8}
	}
	return out
}

func TestDetect(t *testing.T) {
	c := MustNewClassifier(DefaultRules())

	tests := []struct {
		name string
		text string
		hits []retrieval.Hit
		want string
	}{
		{name: "greeting", text: "Hola!", want: Greeting},
		{name: "accented faq word", text: "¿Cuál es la dirección?", want: FAQ},
		{name: "accented menu word", text: "muéstrame el MENÚ", want: Menu},
		{name: "order", text: "quiero 2 pizzas", want: Order},
		{name: "complaint", text: "tengo una queja, el servicio es lento", want: Complaint},
		{name: "goodbye", text: "adiós", want: Goodbye},
		{name: "first rule wins", text: "hola, quiero pedir", want: Greeting},
		{name: "no partial word match", text: "chaos", want: Unknown},
		{name: "faq hits decide", text: "xyz", hits: hits(retrieval.SourceFAQ), want: FAQ},
		{name: "catalog hits decide", text: "xyz", hits: hits(retrieval.SourceCatalog, retrieval.SourceCatalog, retrieval.SourceFAQ), want: Menu},
		{name: "tie prefers faq", text: "xyz", hits: hits(retrieval.SourceCatalog, retrieval.SourceFAQ), want: FAQ},
		{name: "document hits only", text: "xyz", hits: hits(retrieval.SourceDocument), want: Unknown},
		{name: "empty text", text: "", want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Detect(tt.text, tt.hits))
		})
	}
}

func TestConfidence(t *testing.T) {
	c := MustNewClassifier(append(DefaultRules(), Rule{Intent: "empty"}))

	tests := []struct {
		name   string
		text   string
		intent string
		want   float64
	}{
		{name: "unknown", text: "xyz", intent: Unknown, want: 0.1},
		{name: "no patterns", text: "xyz", intent: "empty", want: 0.5},
		{name: "unconfigured intent", text: "xyz", intent: "weather", want: 0.5},
		{name: "one of two greeting patterns", text: "hola", intent: Greeting, want: 0.8},
		{name: "both greeting patterns capped", text: "hola, qué tal", intent: Greeting, want: 1.0},
		{name: "one of five faq patterns", text: "horario", intent: FAQ, want: 0.5},
		{name: "no match", text: "xyz", intent: FAQ, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, c.Confidence(tt.text, tt.intent), 1e-9)
		})
	}
}

func TestNewClassifierRejectsBadRules(t *testing.T) {
	_, err := NewClassifier([]Rule{{Intent: "a", Patterns: []string{"("}}})
	require.Error(t, err)

	_, err = NewClassifier([]Rule{{Intent: "a"}, {Intent: "a"}})
	require.Error(t, err)

	_, err = NewClassifier([]Rule{{Intent: "a", Patterns: []string{"  "}}})
	require.Error(t, err)
}

func TestExtractEntities(t *testing.T) {
	got := ExtractEntities("Quiero 3 porciones de pizza y un refresco", Order)
	assert.Equal(t, 3, got["quantity"])
	assert.Equal(t, []string{"pizza", "refresco"}, got["products"])

	got = ExtractEntities("¿abren a las 9:30 am?", FAQ)
	assert.Equal(t, "9:30 am", got["time"])

	assert.Empty(t, ExtractEntities("hola", Greeting))
}
