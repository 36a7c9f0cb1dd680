package retrieval

import (
	"fmt"
	"strconv"
	"strings"
)

type SourceKind string

const (
	SourceFAQ      SourceKind = "faq"
	SourceCatalog  SourceKind = "catalog_item"
	SourceDocument SourceKind = "document_chunk"
)

// Document is one indexed snippet. It is never mutated after a generation is built.
type Document struct {
	Text       string                 `json:"text"`
	SourceKind SourceKind             `json:"source_kind"`
	Metadata   map[string]interface{} `json:"metadata"`
	Embedding  []float32              `json:"-"`
}

// MetaString reads a metadata value as text. Numbers are formatted without trailing zeros.
func (d Document) MetaString(key string) string {
	v, ok := d.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

type Hit struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

type FAQSource struct {
	Question string
	Answer   string
	Tags     string
}

type CatalogSource struct {
	ID          string
	Name        string
	Price       float64
	Description string
	Category    string
	Available   bool
}

// DocumentSource is free-form text already extracted from a file.
type DocumentSource struct {
	FileName string
	FilePath string
	Text     string
}

type Sources struct {
	FAQs      []FAQSource
	Catalog   []CatalogSource
	Documents []DocumentSource
}

// Stats reports what a rebuild indexed. Error is set when the rebuild did not
// replace the serving generation; the counts are then zero.
type Stats struct {
	FAQCount     int    `json:"faqs"`
	CatalogCount int    `json:"menu"`
	DocCount     int    `json:"docs"`
	Error        string `json:"error,omitempty"`
}

func (s Stats) Total() int {
	return s.FAQCount + s.CatalogCount + s.DocCount
}

func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

func faqDocument(f FAQSource) Document {
	return Document{
		Text:       fmt.Sprintf("Q: %s\nA: %s", f.Question, f.Answer),
		SourceKind: SourceFAQ,
		Metadata: map[string]interface{}{
			"question": f.Question,
			"answer":   f.Answer,
			"tags":     f.Tags,
		},
	}
}

func catalogDocument(c CatalogSource) Document {
	var b strings.Builder
	fmt.Fprintf(&b, "Producto: %s\nPrecio: $%s", c.Name, FormatPrice(c.Price))
	if c.Description != "" {
		fmt.Fprintf(&b, "\nDescripción: %s", c.Description)
	}
	if c.Category != "" {
		fmt.Fprintf(&b, "\nCategoría: %s", c.Category)
	}
	return Document{
		Text:       b.String(),
		SourceKind: SourceCatalog,
		Metadata: map[string]interface{}{
			"name":        c.Name,
			"price":       c.Price,
			"description": c.Description,
			"category":    c.Category,
			"product_id":  c.ID,
		},
	}
}

func chunkDocuments(d DocumentSource, chunks []string) []Document {
	docs := make([]Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, Document{
			Text:       chunk,
			SourceKind: SourceDocument,
			Metadata: map[string]interface{}{
				"file_name":    d.FileName,
				"file_path":    d.FilePath,
				"chunk_id":     i,
				"total_chunks": len(chunks),
			},
		})
	}
	return docs
}
