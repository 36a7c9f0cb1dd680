package dialogue

import "fmt"

// QuickOrder is the name of the built-in order collection dialogue.
const QuickOrder = "quick_order"

// DefaultQuickOrder asks for name, product, quantity and phone.
func DefaultQuickOrder() Definition {
	return Definition{
		Name: QuickOrder,
		Steps: []Step{
			{Prompt: "¡Genial! ¿Cuál es tu nombre?", Variable: "name", Validation: ValidateRequired},
			{Prompt: "Gracias {name}. ¿Qué producto te gustaría pedir?", Variable: "product", Validation: ValidateRequired},
			{Prompt: "¿Cuántas unidades de {product}?", Variable: "qty", Validation: ValidateNumber},
			{Prompt: "Perfecto. ¿A qué teléfono te contactamos?", Variable: "phone", Validation: ValidatePhone},
		},
	}
}

// NewOrderFinalizer turns the collected answers into an OrderDraft and a confirmation.
func NewOrderFinalizer(businessName string) Finalizer {
	if businessName == "" {
		businessName = "nuestro negocio"
	}
	return func(s Session) Completion {
		draft := &OrderDraft{
			CustomerName: stringVar(s.Variables, "name"),
			Phone:        stringVar(s.Variables, "phone"),
			Product:      stringVar(s.Variables, "product"),
			Quantity:     1,
			Channel:      s.Channel,
		}
		if qty, ok := s.Variables["qty"].(int); ok && qty > 0 {
			draft.Quantity = qty
		}
		return Completion{
			Text: fmt.Sprintf(
				"¡Perfecto! Tu pedido ha sido recibido. El equipo de %s te contactará pronto al %s para confirmar los detalles.",
				businessName, draft.Phone,
			),
			Order: draft,
		}
	}
}

func stringVar(vars map[string]interface{}, key string) string {
	v, ok := vars[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
