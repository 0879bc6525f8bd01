package render

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/foodgram/internal/config"
	"github.com/localnerve/foodgram/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleList() ShoppingList {
	return ShoppingList{
		Owner:       "cook",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Items: []models.ShoppingListItem{
			{Name: "flour", MeasurementUnit: "g", Amount: 500},
			{Name: "sugar", MeasurementUnit: "g", Amount: 100},
		},
	}
}

func TestTextRender(t *testing.T) {
	doc, err := Text{}.Render(context.Background(), sampleList())
	require.NoError(t, err)

	assert.Equal(t, "shopping_list.txt", doc.Filename)
	assert.True(t, strings.HasPrefix(doc.ContentType, "text/plain"))
	body := string(doc.Data)
	assert.Contains(t, body, "Shopping list for cook")
	assert.Contains(t, body, "1. flour (g): 500\n")
	assert.Contains(t, body, "2. sugar (g): 100\n")
}

func TestTextRenderEmpty(t *testing.T) {
	doc, err := Text{}.Render(context.Background(), ShoppingList{Owner: "cook"})
	require.NoError(t, err)
	assert.Contains(t, string(doc.Data), "empty")
}

func TestHTMLEscapesNames(t *testing.T) {
	list := sampleList()
	list.Items[0].Name = "<b>flour</b>"

	markup, err := HTML(list)
	require.NoError(t, err)
	assert.Contains(t, string(markup), "&lt;b&gt;flour&lt;/b&gt;")
	assert.Contains(t, string(markup), "<td>1</td>")
	assert.Contains(t, string(markup), "<td>2</td>")
}

func TestNewSelectsFormat(t *testing.T) {
	r, err := New(&config.Config{ShoppingListFormat: "txt"})
	require.NoError(t, err)
	assert.IsType(t, Text{}, r)

	r, err = New(&config.Config{ShoppingListFormat: "pdf"})
	require.NoError(t, err)
	assert.IsType(t, &PDF{}, r)

	_, err = New(&config.Config{ShoppingListFormat: "docx"})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	execPath := os.Getenv("CHROME_PATH")
	remote := os.Getenv("CHROME_WS_URL")
	if testing.Short() || (execPath == "" && remote == "") {
		t.Skip("set CHROME_PATH or CHROME_WS_URL to print with Chrome")
	}

	p := NewPDF(PDFOptions{ExecPath: execPath, RemoteURL: remote})
	defer p.Close()

	doc, err := p.Render(context.Background(), sampleList())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
}
