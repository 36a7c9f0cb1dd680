package service

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/retrieval"
)

// indexSnapshotStore keeps the serving retrieval generation in the
// indexed_documents table.
type indexSnapshotStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewIndexSnapshotStore(uowFactory unitofwork.RepositoryFactory) retrieval.SnapshotStore {
	return &indexSnapshotStore{uowFactory: uowFactory}
}

func (s *indexSnapshotStore) Save(ctx context.Context, docs []retrieval.Document) error {
	rows := make([]*entity.IndexedDocument, len(docs))
	for i, d := range docs {
		rows[i] = &entity.IndexedDocument{
			Position:   i,
			Text:       d.Text,
			SourceKind: string(d.SourceKind),
			Metadata:   d.Metadata,
			Embedding:  d.Embedding,
		}
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.IndexedDocumentRepository().ReplaceAll(ctx, rows)
}

func (s *indexSnapshotStore) Load(ctx context.Context) ([]retrieval.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.IndexedDocumentRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]retrieval.Document, len(rows))
	for i, r := range rows {
		docs[i] = retrieval.Document{
			Text:       r.Text,
			SourceKind: retrieval.SourceKind(r.SourceKind),
			Metadata:   r.Metadata,
			Embedding:  r.Embedding,
		}
	}
	return docs, nil
}
