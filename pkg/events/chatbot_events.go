package events

const (
	MessageProcessed = "MESSAGE_PROCESSED"
	OrderCreated     = "ORDER_CREATED"
	IndexRebuilt     = "INDEX_REBUILT"
)

func NewMessageProcessed(messageID, userID, channel, intent, source string, durationMs int64) BaseEvent {
	return newEvent(MessageProcessed, map[string]interface{}{
		"message_id":  messageID,
		"user_id":     userID,
		"channel":     channel,
		"intent":      intent,
		"source":      source,
		"duration_ms": durationMs,
	})
}

func NewOrderCreated(orderID, customerName, phone, product string, quantity int, channel string) BaseEvent {
	return newEvent(OrderCreated, map[string]interface{}{
		"order_id":      orderID,
		"customer_name": customerName,
		"phone":         phone,
		"product":       product,
		"quantity":      quantity,
		"channel":       channel,
	})
}

func NewIndexRebuilt(faqs, catalog, docs int, rebuildErr string) BaseEvent {
	data := map[string]interface{}{
		"faqs": faqs,
		"menu": catalog,
		"docs": docs,
	}
	if rebuildErr != "" {
		data["error"] = rebuildErr
	}
	return newEvent(IndexRebuilt, data)
}
