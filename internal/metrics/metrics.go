// Package metrics holds the domain counters exposed next to the HTTP metrics on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecipeWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Recipe writes by operation (create, update, delete)",
		},
		[]string{"op"},
	)

	RelationChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_relation_changes_total",
			Help: "Favorite, shopping cart and subscription changes by kind and operation",
		},
		[]string{"kind", "op"},
	)

	ShoppingListRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_renders_total",
			Help: "Shopping list downloads by format and result",
		},
		[]string{"format", "result"},
	)

	ShoppingListRenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodgram_shopping_list_render_duration_seconds",
			Help:    "Time to aggregate and render a shopping list",
			Buckets: prometheus.DefBuckets,
		},
	)

	ShortLinkLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_short_link_lookups_total",
			Help: "Short link resolutions by result (hit, miss, not_found)",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(RecipeWrites)
	prometheus.MustRegister(RelationChanges)
	prometheus.MustRegister(ShoppingListRenders)
	prometheus.MustRegister(ShoppingListRenderDuration)
	prometheus.MustRegister(ShortLinkLookups)
}
