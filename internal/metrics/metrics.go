package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus counters of the ID card service.
// Each instance owns its registry so tests can create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	CardsCreated  prometheus.Counter
	CardsDeleted  prometheus.Counter
	CardsImported prometheus.Counter
	ImportSkipped prometheus.Counter
	PDFPages      prometheus.Counter
	PDFDocuments  *prometheus.CounterVec
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CardsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "idcards_created_total",
			Help: "ID cards created through the API",
		}),
		CardsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "idcards_deleted_total",
			Help: "ID cards deleted through the API",
		}),
		CardsImported: f.NewCounter(prometheus.CounterOpts{
			Name: "idcards_imported_total",
			Help: "ID cards persisted by bulk import",
		}),
		ImportSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "idcards_import_skipped_total",
			Help: "Bulk import rows skipped because the id number already exists",
		}),
		PDFPages: f.NewCounter(prometheus.CounterOpts{
			Name: "idcards_pdf_pages_total",
			Help: "Pages rendered into PDF documents",
		}),
		PDFDocuments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idcards_pdf_documents_total",
			Help: "PDF documents rendered, by kind",
		}, []string{"kind"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDocument records one rendered document.
func (m *Metrics) ObserveDocument(kind string, pages int) {
	m.PDFDocuments.WithLabelValues(kind).Inc()
	m.PDFPages.Add(float64(pages))
}
