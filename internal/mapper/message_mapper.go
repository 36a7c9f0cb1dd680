package mapper

import (
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:        msg.Id,
		UserId:    msg.UserId,
		Channel:   msg.Channel,
		Text:      msg.Text,
		Reply:     msg.Reply,
		Intent:    msg.Intent,
		Source:    msg.Source,
		Trace:     fromJSON(msg.Trace),
		CreatedAt: msg.CreatedAt,
	}
}

func (m *MessageMapper) ToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:        msg.Id,
		UserId:    msg.UserId,
		Channel:   msg.Channel,
		Text:      msg.Text,
		Reply:     msg.Reply,
		Intent:    msg.Intent,
		Source:    msg.Source,
		Trace:     toJSON(msg.Trace),
		CreatedAt: msg.CreatedAt,
	}
}

func (m *MessageMapper) ToEntities(msgs []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}
