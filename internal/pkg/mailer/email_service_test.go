package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderNoticeEscapesInput(t *testing.T) {
	body, err := RenderOrderNotice(OrderNotice{
		BusinessName: "Pizzería Roma",
		OrderID:      "o-1",
		CustomerName: "<script>alert(1)</script>",
		Phone:        "5551234567",
		Product:      "Pizza",
		Quantity:     2,
		Channel:      "web",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Nuevo pedido en Pizzería Roma")
	assert.Contains(t, body, "<td>2</td>")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}
