package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/mailer"
	"ai-chatbot-be/pkg/embedding"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lengthEmbedder returns a two dimensional vector derived from the text length.
type lengthEmbedder struct{}

func (lengthEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{
		Values: []float32{1, float32(len(text)%7) + 1},
	}}, nil
}

func seedCatalog(store *memStore) {
	id := uuid.New()
	store.faqs[id] = &entity.FAQ{Id: id, Question: "¿Horario?", Answer: "9 a 18"}
	pid := uuid.New()
	store.products[pid] = &entity.Product{Id: pid, Name: "Tacos", Price: 5, Available: true}
}

func TestKnowledgeRebuildSavesSnapshot(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	log := logger.NewNopLogger()
	publisher := &recordingPublisher{}
	feed := &recordingFeed{}

	index := retrieval.NewIndex(lengthEmbedder{}, log, retrieval.Options{Snapshot: NewIndexSnapshotStore(store)})
	svc := NewKnowledgeService(store, index, t.TempDir(), nil, publisher, feed, log)

	res, err := svc.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.FAQs)
	assert.Equal(t, 1, res.Menu)
	assert.Equal(t, 0, res.Docs)
	assert.Empty(t, res.Error)
	assert.Equal(t, []string{events.IndexRebuilt}, publisher.types())
	assert.Equal(t, []string{FeedIndexRebuilt}, feed.types())
	require.Len(t, store.snapshots, 2)

	restored := retrieval.NewIndex(nil, log, retrieval.Options{Snapshot: NewIndexSnapshotStore(store)})
	require.NoError(t, NewKnowledgeService(store, restored, "", nil, nil, nil, log).Restore(context.Background()))
	assert.Equal(t, 2, restored.Size())
	assert.True(t, restored.HasVectors())
}

func TestKnowledgeRebuildWithoutEmbedderReportsError(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	log := logger.NewNopLogger()

	svc := NewKnowledgeService(store, retrieval.NewIndex(nil, log, retrieval.Options{}), "", nil, nil, nil, log)
	res, err := svc.Rebuild(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Error)
	assert.Zero(t, res.FAQs)
}

func TestRequestRebuildRunsThroughConsumer(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	log := logger.NewNopLogger()
	feed := &recordingFeed{}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	index := retrieval.NewIndex(lengthEmbedder{}, log, retrieval.Options{})
	svc := NewKnowledgeService(store, index, "", pubSub, nil, feed, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, NewConsumerService(pubSub, RebuildTopic, svc, log).Consume(ctx))

	require.NoError(t, svc.RequestRebuild(ctx, "faq created"))
	assert.Eventually(t, func() bool { return index.Size() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return len(feed.types()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRequestRebuildWithoutPublisher(t *testing.T) {
	log := logger.NewNopLogger()
	svc := NewKnowledgeService(newMemStore(), retrieval.NewIndex(nil, log, retrieval.Options{}), "", nil, nil, nil, log)
	assert.Error(t, svc.RequestRebuild(context.Background(), "x"))
}

func TestImportFAQs(t *testing.T) {
	store := newMemStore()
	log := logger.NewNopLogger()
	svc := NewKnowledgeService(store, retrieval.NewIndex(nil, log, retrieval.Options{}), "", nil, nil, nil, log)

	n, err := svc.ImportFAQs(context.Background(), strings.NewReader("question,answer,tags\n¿Horario?,9 a 18,horas\n¿Envíos?,Sí,\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.faqs, 2)
	assert.Equal(t, 1, store.commits)

	_, err = svc.ImportFAQs(context.Background(), strings.NewReader("foo,bar\n1,2\n"))
	assert.Error(t, err)
}

type recordingMailer struct {
	to      string
	notices []mailer.OrderNotice
	err     error
}

func (m *recordingMailer) SendOrderNotification(toEmail string, notice mailer.OrderNotice) error {
	if m.err != nil {
		return m.err
	}
	m.to = toEmail
	m.notices = append(m.notices, notice)
	return nil
}

func TestNotificationHandlesOrderCreated(t *testing.T) {
	m := &recordingMailer{}
	feed := &recordingFeed{}
	svc := NewNotificationService(nil, m, "owner@example.com", "Pizzería Roma", feed, logger.NewNopLogger())

	// Quantity arrives as float64 once the event has crossed NATS as JSON.
	event := events.BaseEvent{Type: events.OrderCreated, Data: map[string]interface{}{
		"order_id": "o-1", "customer_name": "Ana", "phone": "555", "product": "Tacos", "quantity": float64(3), "channel": "web",
	}}
	require.NoError(t, svc.HandleOrderCreated(context.Background(), event))

	require.Len(t, m.notices, 1)
	assert.Equal(t, "owner@example.com", m.to)
	assert.Equal(t, mailer.OrderNotice{
		BusinessName: "Pizzería Roma", OrderID: "o-1", CustomerName: "Ana", Phone: "555", Product: "Tacos", Quantity: 3, Channel: "web",
	}, m.notices[0])
	assert.Equal(t, []string{FeedOrderNotified}, feed.types())

	m.err = errors.New("smtp down")
	assert.Error(t, svc.HandleOrderCreated(context.Background(), event))
}

func TestNotificationWithoutRecipientOnlyFeeds(t *testing.T) {
	m := &recordingMailer{}
	feed := &recordingFeed{}
	svc := NewNotificationService(nil, m, "", "Pizzería Roma", feed, logger.NewNopLogger())

	require.NoError(t, svc.HandleOrderCreated(context.Background(), events.NewOrderCreated("o-2", "Ana", "555", "Tacos", 1, "web")))
	assert.Empty(t, m.notices)
	assert.Equal(t, []string{FeedOrderNotified}, feed.types())
}
