// pdf.go
//
// A recipe sharing backend: recipes, favorites, shopping lists and subscriptions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of foodgram.
// foodgram is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// foodgram is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with foodgram.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFOptions selects the Chrome instance used for printing.
type PDFOptions struct {
	ExecPath  string        // local Chrome binary, empty for the default lookup
	RemoteURL string        // DevTools websocket of a running Chrome, overrides ExecPath
	Timeout   time.Duration // per document, defaults to 30s
}

// PDF prints an HTML rendition of the list with headless Chrome.
type PDF struct {
	opts PDFOptions

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

var listTemplate = template.Must(template.New("shopping_list").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Shopping list</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h1 { font-size: 20pt; margin-bottom: 0; }
p.date { color: #666; margin-top: 4pt; }
table { border-collapse: collapse; width: 100%; margin-top: 16pt; }
td, th { border-bottom: 1px solid #ddd; padding: 6pt; text-align: left; }
td.amount { text-align: right; }
</style>
</head>
<body>
<h1>Shopping list for {{.Owner}}</h1>
<p class="date">{{.GeneratedAt.Format "2006-01-02"}}</p>
{{if .Items}}
<table>
<tr><th>#</th><th>Ingredient</th><th>Unit</th><th>Amount</th></tr>
{{range $i, $item := .Items}}<tr><td>{{inc $i}}</td><td>{{$item.Name}}</td><td>{{$item.MeasurementUnit}}</td><td class="amount">{{$item.Amount}}</td></tr>
{{end}}</table>
{{else}}
<p>The shopping cart is empty.</p>
{{end}}
</body>
</html>
`))

// NewPDF returns a renderer. Chrome is started lazily on the first Render.
func NewPDF(opts PDFOptions) *PDF {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &PDF{opts: opts}
}

// HTML renders the markup that is printed to PDF.
func HTML(list ShoppingList) ([]byte, error) {
	var buf bytes.Buffer
	if err := listTemplate.Execute(&buf, list); err != nil {
		return nil, fmt.Errorf("failed to render shopping list html: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *PDF) allocator() context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.allocCtx == nil {
		if p.opts.RemoteURL != "" {
			p.allocCtx, p.allocCancel = chromedp.NewRemoteAllocator(context.Background(), p.opts.RemoteURL)
		} else {
			allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.DisableGPU)
			if p.opts.ExecPath != "" {
				allocOpts = append(allocOpts, chromedp.ExecPath(p.opts.ExecPath))
			}
			p.allocCtx, p.allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
		}
	}
	return p.allocCtx
}

func (p *PDF) Render(ctx context.Context, list ShoppingList) (Document, error) {
	markup, err := HTML(list)
	if err != nil {
		return Document{}, err
	}

	tabCtx, cancel := chromedp.NewContext(p.allocator(), chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, p.opts.Timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var pdf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, string(markup)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			pdf = buf
			return err
		}),
	)
	if err != nil {
		return Document{}, fmt.Errorf("failed to print shopping list: %w", err)
	}

	return Document{
		Data:        pdf,
		ContentType: "application/pdf",
		Filename:    "shopping_list.pdf",
	}, nil
}

// Close stops the Chrome process started by Render.
func (p *PDF) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.allocCancel != nil {
		p.allocCancel()
		p.allocCtx, p.allocCancel = nil, nil
	}
}
