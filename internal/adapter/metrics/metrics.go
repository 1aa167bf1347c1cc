package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics holds all Prometheus metrics for the storefront service.
type StoreMetrics struct {
	CatalogOpsTotal    *prometheus.CounterVec
	AuthAttemptsTotal  *prometheus.CounterVec
	GateDecisionsTotal *prometheus.CounterVec
	RoleCacheHits      prometheus.Counter
	RoleCacheMisses    prometheus.Counter
	AssetUploadBytes   prometheus.Counter
	CheckoutLinksTotal prometheus.Counter
}

// NewStoreMetrics initializes and registers the Prometheus metrics.
func NewStoreMetrics() *StoreMetrics {
	return &StoreMetrics{
		CatalogOpsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leafmarket",
			Subsystem: "catalog",
			Name:      "ops_total",
			Help:      "Total catalog operations by op and status.",
		}, []string{"op", "status"}), // op: add, list, update, delete, toggle; status: ok, error
		AuthAttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leafmarket",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total auth attempts by operation and outcome.",
		}, []string{"op", "outcome"}),
		GateDecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leafmarket",
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Access gate decisions by outcome.",
		}, []string{"outcome"}), // outcome: allowed, login_redirect, home_redirect
		RoleCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "leafmarket",
			Subsystem: "auth",
			Name:      "role_cache_hits_total",
			Help:      "Total role record cache hits.",
		}),
		RoleCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "leafmarket",
			Subsystem: "auth",
			Name:      "role_cache_misses_total",
			Help:      "Total role record cache misses.",
		}),
		AssetUploadBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "leafmarket",
			Subsystem: "assets",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded to the asset store.",
		}),
		CheckoutLinksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "leafmarket",
			Subsystem: "checkout",
			Name:      "links_total",
			Help:      "Total checkout links generated.",
		}),
	}
}
