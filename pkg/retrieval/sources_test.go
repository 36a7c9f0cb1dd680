package retrieval

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ai-chatbot-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFAQsCSV(t *testing.T) {
	faqs, err := ParseFAQsCSV(strings.NewReader("\ufeffQuestion,answer,tags\n" +
		"¿Horario?,\"Abrimos a las 9, cerramos a las 18\",horario\n" +
		",sin pregunta,\n" +
		"¿Envíos?,Sí\n"))
	require.NoError(t, err)
	require.Len(t, faqs, 2)
	assert.Equal(t, "Abrimos a las 9, cerramos a las 18", faqs[0].Answer)
	assert.Equal(t, "horario", faqs[0].Tags)
	assert.Equal(t, "¿Envíos?", faqs[1].Question)
	assert.Empty(t, faqs[1].Tags)
}

func TestParseCatalogCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []CatalogSource
		wantErr string
	}{
		{
			name:  "full row and default availability",
			input: "id,name,price,description,category,available\n1,Pizza,10.5,Queso,pizzas,false\n2,Tacos,5,,,\n",
			want: []CatalogSource{
				{ID: "1", Name: "Pizza", Price: 10.5, Description: "Queso", Category: "pizzas", Available: false},
				{ID: "2", Name: "Tacos", Price: 5, Available: true},
			},
		},
		{name: "missing column", input: "name\nPizza\n", wantErr: `missing column "price"`},
		{name: "bad price", input: "name,price\nPizza,diez\n", wantErr: "row 2: invalid price"},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCatalogCSV(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDataDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "faqs.csv"), []byte("question,answer\n¿Horario?,9 a 18\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "about.md"), []byte("Somos una pizzería."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "menu.pdf"), []byte("%PDF"), 0o644))

	src, err := LoadDataDir(dir, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Len(t, src.FAQs, 1)
	assert.Empty(t, src.Catalog)
	require.Len(t, src.Documents, 1)
	assert.Equal(t, "about.md", src.Documents[0].FileName)
}
