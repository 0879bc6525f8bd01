// Package render turns an aggregated shopping list into a downloadable document.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/foodgram/internal/config"
	"github.com/localnerve/foodgram/internal/models"
)

// ShoppingList is the input of every renderer.
type ShoppingList struct {
	Owner       string
	GeneratedAt time.Time
	Items       []models.ShoppingListItem
}

// Document is a rendered file ready to send as an attachment.
type Document struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Renderer produces a Document from a ShoppingList.
type Renderer interface {
	Render(ctx context.Context, list ShoppingList) (Document, error)
}

// New builds the renderer named by SHOPPING_LIST_FORMAT.
func New(cfg *config.Config) (Renderer, error) {
	switch cfg.ShoppingListFormat {
	case "txt":
		return Text{}, nil
	case "pdf":
		return NewPDF(PDFOptions{
			ExecPath:  cfg.ChromePath,
			RemoteURL: cfg.ChromeWSURL,
		}), nil
	}
	return nil, fmt.Errorf("unsupported shopping list format: %s", cfg.ShoppingListFormat)
}
