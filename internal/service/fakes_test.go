package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/contract"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/events"

	"github.com/google/uuid"
)

// memStore backs every fake repository. Specifications other than ByID are ignored.
type memStore struct {
	mu        sync.Mutex
	messages  []*entity.Message
	faqs      map[uuid.UUID]*entity.FAQ
	products  map[uuid.UUID]*entity.Product
	orders    map[uuid.UUID]*entity.Order
	settings  map[string]string
	snapshots []*entity.IndexedDocument
	commits   int
	failWith  error
}

func newMemStore() *memStore {
	return &memStore{
		faqs:     map[uuid.UUID]*entity.FAQ{},
		products: map[uuid.UUID]*entity.Product{},
		orders:   map[uuid.UUID]*entity.Order{},
		settings: map[string]string{},
	}
}

func (m *memStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUoW{store: m}
}

func byID(specs []specification.Specification) (uuid.UUID, bool) {
	for _, s := range specs {
		if id, ok := s.(specification.ByID); ok {
			return id.ID, true
		}
	}
	return uuid.Nil, false
}

type memUoW struct {
	store *memStore
	open  bool
}

func (u *memUoW) Begin(ctx context.Context) error { u.open = true; return nil }

func (u *memUoW) Commit() error {
	if !u.open {
		return errors.New("no transaction to commit")
	}
	u.open = false
	u.store.commits++
	return nil
}

func (u *memUoW) Rollback() error {
	if !u.open {
		return errors.New("no transaction to rollback")
	}
	u.open = false
	return nil
}

func (u *memUoW) MessageRepository() contract.MessageRepository { return memMessages{u.store} }
func (u *memUoW) FAQRepository() contract.FAQRepository         { return memFAQs{u.store} }
func (u *memUoW) ProductRepository() contract.ProductRepository { return memProducts{u.store} }
func (u *memUoW) OrderRepository() contract.OrderRepository     { return memOrders{u.store} }
func (u *memUoW) SettingRepository() contract.SettingRepository { return memSettings{u.store} }
func (u *memUoW) IndexedDocumentRepository() contract.IndexedDocumentRepository {
	return memSnapshots{u.store}
}

type memMessages struct{ s *memStore }

func (r memMessages) Create(ctx context.Context, m *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	m.Id = uuid.New()
	m.CreatedAt = time.Now()
	r.s.messages = append(r.s.messages, m)
	return nil
}

func (r memMessages) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*entity.Message(nil), r.s.messages...), nil
}

func (r memMessages) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var since time.Time
	for _, spec := range specs {
		if c, ok := spec.(specification.CreatedSince); ok {
			since = c.Since
		}
	}
	var n int64
	for _, m := range r.s.messages {
		if !m.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r memMessages) CountBy(ctx context.Context, column string, specs ...specification.Specification) ([]entity.GroupCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	for _, m := range r.s.messages {
		switch column {
		case "intent":
			counts[m.Intent]++
		case "source":
			counts[m.Source]++
		case "channel":
			counts[m.Channel]++
		}
	}
	return groupCounts(counts), nil
}

func groupCounts(counts map[string]int64) []entity.GroupCount {
	out := make([]entity.GroupCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, entity.GroupCount{Key: k, Count: v})
	}
	return out
}

type memFAQs struct{ s *memStore }

func (r memFAQs) Create(ctx context.Context, f *entity.FAQ) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f.Id = uuid.New()
	r.s.faqs[f.Id] = f
	return nil
}

func (r memFAQs) Update(ctx context.Context, f *entity.FAQ) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.faqs[f.Id] = f
	return nil
}

func (r memFAQs) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.faqs, id)
	return nil
}

func (r memFAQs) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FAQ, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, _ := byID(specs)
	return r.s.faqs[id], nil
}

func (r memFAQs) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FAQ, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.FAQ, 0, len(r.s.faqs))
	for _, f := range r.s.faqs {
		out = append(out, f)
	}
	return out, nil
}

func (r memFAQs) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.faqs)), nil
}

type memProducts struct{ s *memStore }

func (r memProducts) Create(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.Id = uuid.New()
	r.s.products[p.Id] = p
	return nil
}

func (r memProducts) Update(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.Id] = p
	return nil
}

func (r memProducts) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

func (r memProducts) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, _ := byID(specs)
	return r.s.products[id], nil
}

func (r memProducts) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	return out, nil
}

func (r memProducts) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.products)), nil
}

type memOrders struct{ s *memStore }

func (r memOrders) Create(ctx context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	o.Id = uuid.New()
	o.CreatedAt = time.Now()
	r.s.orders[o.Id] = o
	return nil
}

func (r memOrders) Update(ctx context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[o.Id] = o
	return nil
}

func (r memOrders) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, _ := byID(specs)
	return r.s.orders[id], nil
}

func (r memOrders) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r memOrders) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.orders)), nil
}

func (r memOrders) CountBy(ctx context.Context, column string, specs ...specification.Specification) ([]entity.GroupCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	for _, o := range r.s.orders {
		counts[string(o.Status)]++
	}
	return groupCounts(counts), nil
}

type memSettings struct{ s *memStore }

func (r memSettings) Upsert(ctx context.Context, st *entity.Setting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.settings[st.Key] = st.Value
	return nil
}

func (r memSettings) FindAll(ctx context.Context) ([]*entity.Setting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Setting, 0, len(r.s.settings))
	for k, v := range r.s.settings {
		out = append(out, &entity.Setting{Key: k, Value: v})
	}
	return out, nil
}

type memSnapshots struct{ s *memStore }

func (r memSnapshots) ReplaceAll(ctx context.Context, docs []*entity.IndexedDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.snapshots = docs
	return nil
}

func (r memSnapshots) FindAll(ctx context.Context) ([]*entity.IndexedDocument, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.snapshots, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type feedEntry struct {
	Type string
	Data interface{}
}

type recordingFeed struct {
	mu      sync.Mutex
	entries []feedEntry
}

func (f *recordingFeed) Publish(eventType string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, feedEntry{Type: eventType, Data: data})
}

func (f *recordingFeed) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Type
	}
	return out
}

type recordingKnowledge struct {
	reasons []string
}

func (k *recordingKnowledge) Rebuild(ctx context.Context) (*dto.RebuildIndexResponse, error) {
	return &dto.RebuildIndexResponse{}, nil
}

func (k *recordingKnowledge) RequestRebuild(ctx context.Context, reason string) error {
	k.reasons = append(k.reasons, reason)
	return nil
}

func (k *recordingKnowledge) Restore(ctx context.Context) error { return nil }

func (k *recordingKnowledge) IndexSize() int { return 0 }

func (k *recordingKnowledge) ImportFAQs(ctx context.Context, r io.Reader) (int, error) {
	return 0, nil
}
