package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "refdoc_parsing_seconds",
		Help:    "Time spent parsing a PHP source file.",
		Buckets: prometheus.DefBuckets,
	})

	SymbolsDiscovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refdoc_symbols_discovered_total",
		Help: "Total number of symbols found by the symbol source.",
	}, []string{"kind"})

	GraphSymbols = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "refdoc_graph_symbols",
		Help: "Number of symbols registered in the reference graph.",
	})

	DocumentsIgnored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refdoc_documents_ignored_total",
		Help: "Total number of documents skipped as internal, deprecated or undocumented.",
	})

	TypeExpressionsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refdoc_type_expressions_resolved_total",
		Help: "Total number of type expressions resolved against alias tables.",
	})

	UnlinkableReferences = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refdoc_unlinkable_references_total",
		Help: "Total number of see-also entries rendered without a link.",
	})

	ParseCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refdoc_parse_cache_hits_total",
		Help: "Total number of source files reused from the parse cache.",
	})

	PagesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refdoc_pages_written_total",
		Help: "Total number of pages written to the output directory.",
	})

	PagesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refdoc_pages_skipped_total",
		Help: "Total number of pages left untouched because their content did not change.",
	})

	PagesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refdoc_pages_removed_total",
		Help: "Total number of stale pages removed from the output directory.",
	})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "refdoc_phase_seconds",
		Help:    "Time spent in each build phase.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refdoc_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RebuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refdoc_rebuilds_total",
		Help: "Total number of watch-triggered rebuilds by outcome.",
	}, []string{"outcome"})
)
