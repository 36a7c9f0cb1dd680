package retrieval

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ai-chatbot-be/internal/pkg/logger"
)

// LoadDocumentsDir reads every .txt and .md file directly under dir.
// Other files are skipped with a warning; binary formats must be extracted
// to text before they land here. A missing directory yields no documents.
func LoadDocumentsDir(dir string, log logger.ILogger) ([]DocumentSource, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read docs dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var docs []DocumentSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".md":
		default:
			log.Warn(module, "Unsupported document type skipped", map[string]interface{}{"file": path})
			continue
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			log.Error(module, "Failed to read document", map[string]interface{}{"file": path, "error": err.Error()})
			continue
		}
		docs = append(docs, DocumentSource{FileName: e.Name(), FilePath: path, Text: string(raw)})
	}
	return docs, nil
}

// ParseFAQsCSV reads a question,answer[,tags] CSV with a header row.
// Rows missing a question or an answer are skipped.
func ParseFAQsCSV(r io.Reader) ([]FAQSource, error) {
	rows, err := readCSV(r, "question", "answer")
	if err != nil {
		return nil, err
	}
	var faqs []FAQSource
	for _, row := range rows {
		if row["question"] == "" || row["answer"] == "" {
			continue
		}
		faqs = append(faqs, FAQSource{Question: row["question"], Answer: row["answer"], Tags: row["tags"]})
	}
	return faqs, nil
}

// ParseCatalogCSV reads a name,price[,id,description,category,available] CSV
// with a header row. A blank available column means available.
func ParseCatalogCSV(r io.Reader) ([]CatalogSource, error) {
	rows, err := readCSV(r, "name", "price")
	if err != nil {
		return nil, err
	}
	var items []CatalogSource
	for i, row := range rows {
		if row["name"] == "" {
			continue
		}
		price, err := strconv.ParseFloat(row["price"], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q", i+2, row["price"])
		}
		available := true
		if raw := row["available"]; raw != "" {
			if available, err = strconv.ParseBool(raw); err != nil {
				return nil, fmt.Errorf("row %d: invalid available %q", i+2, raw)
			}
		}
		items = append(items, CatalogSource{
			ID:          row["id"],
			Name:        row["name"],
			Price:       price,
			Description: row["description"],
			Category:    row["category"],
			Available:   available,
		})
	}
	return items, nil
}

// readCSV returns rows keyed by lowercased header name.
func readCSV(r io.Reader, required ...string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	for _, col := range required {
		found := false
		for _, h := range header {
			if h == col {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("csv is missing column %q", col)
		}
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadDataDir reads faqs.csv, menu.csv and the docs subdirectory of dir.
// Missing files are skipped; the console playground runs from this alone.
func LoadDataDir(dir string, log logger.ILogger) (Sources, error) {
	var src Sources

	if f, err := os.Open(filepath.Join(dir, "faqs.csv")); err == nil {
		src.FAQs, err = ParseFAQsCSV(f)
		f.Close()
		if err != nil {
			return src, fmt.Errorf("faqs.csv: %w", err)
		}
	}
	if f, err := os.Open(filepath.Join(dir, "menu.csv")); err == nil {
		src.Catalog, err = ParseCatalogCSV(f)
		f.Close()
		if err != nil {
			return src, fmt.Errorf("menu.csv: %w", err)
		}
	}

	docs, err := LoadDocumentsDir(filepath.Join(dir, "docs"), log)
	if err != nil {
		return src, err
	}
	src.Documents = docs
	return src, nil
}
