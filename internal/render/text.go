package render

import (
	"bytes"
	"context"
	"fmt"
)

// Text renders a plain UTF-8 list, one ingredient per line.
type Text struct{}

func (Text) Render(_ context.Context, list ShoppingList) (Document, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Shopping list for %s\n", list.Owner)
	fmt.Fprintf(&buf, "%s\n\n", list.GeneratedAt.Format("2006-01-02"))

	if len(list.Items) == 0 {
		buf.WriteString("The shopping cart is empty.\n")
	}
	for i, item := range list.Items {
		fmt.Fprintf(&buf, "%d. %s (%s): %d\n", i+1, item.Name, item.MeasurementUnit, item.Amount)
	}

	return Document{
		Data:        buf.Bytes(),
		ContentType: "text/plain; charset=utf-8",
		Filename:    "shopping_list.txt",
	}, nil
}
