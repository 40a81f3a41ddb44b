package monitoring

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"facebook-extractor/pkg/types"
)

type Metrics struct {
	Lookups           int                    `json:"lookups"`
	Succeeded         int                    `json:"succeeded"`
	Failed            int                    `json:"failed"`
	Unhandled         int                    `json:"unhandled"`
	LastRun           time.Time              `json:"last_run"`
	AverageLookupTime time.Duration          `json:"average_lookup_time"`
	ErrorRate         float64                `json:"error_rate"`
	UnhandledRate     float64                `json:"unhandled_rate"`
	SieveMetrics      map[string]SieveMetric `json:"sieve_metrics"`
	ErrorKinds        map[string]int         `json:"error_kinds"`
	LookupKinds       map[string]int         `json:"lookup_kinds"`
}

type SieveMetric struct {
	Matches           int           `json:"matches"`
	LastMatched       time.Time     `json:"last_matched"`
	AverageLookupTime time.Duration `json:"average_lookup_time"`
}

type collectors struct {
	lookups      *prometheus.CounterVec
	sieveMatches *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// Monitor records lookup outcomes to a JSON file and to Prometheus
// collectors on its own registry.
type Monitor struct {
	mu          sync.Mutex
	metrics     *Metrics
	logger      *logrus.Logger
	metricsFile string
	registry    *prometheus.Registry
	collectors  collectors
	now         func() time.Time
}

func NewMonitor(logger *logrus.Logger, metricsFile string) *Monitor {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	monitor := &Monitor{
		metrics:     newMetrics(),
		logger:      logger,
		metricsFile: metricsFile,
		registry:    registry,
		collectors: collectors{
			lookups: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "fbextract_lookups_total",
				Help: "Lookups by kind and outcome",
			}, []string{"kind", "outcome"}),
			sieveMatches: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "fbextract_sieve_matches_total",
				Help: "Successful post lookups by the sieve that matched",
			}, []string{"sieve"}),
			duration: factory.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "fbextract_lookup_duration_seconds",
				Help:    "Wall time of a single lookup including media and screenshot",
				Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
			}, []string{"kind"}),
		},
		now: time.Now,
	}

	monitor.loadMetrics()
	return monitor
}

func newMetrics() *Metrics {
	return &Metrics{
		SieveMetrics: make(map[string]SieveMetric),
		ErrorKinds:   make(map[string]int),
		LookupKinds:  make(map[string]int),
	}
}

// ObserveLookup records one finished lookup.
func (m *Monitor) ObserveLookup(kind, sieve string, err error, elapsed time.Duration) {
	outcome := types.ErrorKind(err)
	m.collectors.lookups.WithLabelValues(kind, outcome).Inc()
	m.collectors.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if err == nil && sieve != "" {
		m.collectors.sieveMatches.WithLabelValues(sieve).Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	metrics := m.metrics
	metrics.Lookups++
	metrics.LastRun = now
	metrics.LookupKinds[kind]++
	metrics.AverageLookupTime += (elapsed - metrics.AverageLookupTime) / time.Duration(metrics.Lookups)

	if err != nil {
		metrics.Failed++
		metrics.ErrorKinds[outcome]++
		if outcome == "unhandled_content" {
			metrics.Unhandled++
		}
	} else {
		metrics.Succeeded++
	}
	metrics.ErrorRate = float64(metrics.Failed) / float64(metrics.Lookups)
	metrics.UnhandledRate = float64(metrics.Unhandled) / float64(metrics.Lookups)

	if err == nil && sieve != "" {
		sm := metrics.SieveMetrics[sieve]
		sm.Matches++
		sm.LastMatched = now
		sm.AverageLookupTime += (elapsed - sm.AverageLookupTime) / time.Duration(sm.Matches)
		metrics.SieveMetrics[sieve] = sm
	}

	m.saveMetrics()

	m.logger.WithFields(logrus.Fields{
		"kind":     kind,
		"sieve":    sieve,
		"outcome":  outcome,
		"duration": elapsed.String(),
	}).Debug("Recorded lookup")
}

// GetMetrics returns a snapshot of the persisted metrics.
func (m *Monitor) GetMetrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := *m.metrics
	snapshot.SieveMetrics = make(map[string]SieveMetric, len(m.metrics.SieveMetrics))
	for k, v := range m.metrics.SieveMetrics {
		snapshot.SieveMetrics[k] = v
	}
	snapshot.ErrorKinds = copyCounts(m.metrics.ErrorKinds)
	snapshot.LookupKinds = copyCounts(m.metrics.LookupKinds)
	return snapshot
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the monitor's collectors for /metrics.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Monitor) GetHealthStatus(staleAfter time.Duration) map[string]interface{} {
	metrics := m.GetMetrics()
	status := map[string]interface{}{
		"status":              "healthy",
		"last_run":            metrics.LastRun.Format(time.RFC3339),
		"total_lookups":       metrics.Lookups,
		"error_rate":          fmt.Sprintf("%.2f%%", metrics.ErrorRate*100),
		"unhandled_rate":      fmt.Sprintf("%.2f%%", metrics.UnhandledRate*100),
		"average_lookup_time": metrics.AverageLookupTime.String(),
	}

	if m.now().Sub(metrics.LastRun) > staleAfter {
		status["status"] = "warning"
		status["warning"] = fmt.Sprintf("No lookups in the last %s", staleAfter)
	}
	if metrics.ErrorRate > 0.1 {
		status["status"] = "warning"
		status["warning"] = "High error rate detected"
	}
	return status
}

func (m *Monitor) GenerateReport() string {
	metrics := m.GetMetrics()

	var b strings.Builder
	fmt.Fprintf(&b, `
Facebook Extractor Monitoring Report
====================================
Generated: %s

Overall Statistics:
- Total Lookups: %d
- Succeeded: %d
- Failed: %d
- Error Rate: %.2f%%
- Unhandled Rate: %.2f%%
- Average Lookup Time: %s
- Last Run: %s
`,
		m.now().Format("2006-01-02 15:04:05"),
		metrics.Lookups,
		metrics.Succeeded,
		metrics.Failed,
		metrics.ErrorRate*100,
		metrics.UnhandledRate*100,
		metrics.AverageLookupTime,
		metrics.LastRun.Format("2006-01-02 15:04:05"),
	)

	b.WriteString("\nSieve Performance:\n")
	for _, name := range sortedKeys(metrics.SieveMetrics) {
		sm := metrics.SieveMetrics[name]
		fmt.Fprintf(&b, "- %s: %d matches, last %s, average %s\n",
			name, sm.Matches, sm.LastMatched.Format("2006-01-02 15:04:05"), sm.AverageLookupTime)
	}

	if len(metrics.ErrorKinds) > 0 {
		b.WriteString("\nFailures:\n")
		for _, kind := range sortedKeys(metrics.ErrorKinds) {
			fmt.Fprintf(&b, "- %s: %d\n", kind, metrics.ErrorKinds[kind])
		}
	}
	return b.String()
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Monitor) loadMetrics() {
	if _, err := os.Stat(m.metricsFile); os.IsNotExist(err) {
		m.logger.Info("No existing metrics file found, starting fresh")
		return
	}

	data, err := os.ReadFile(m.metricsFile)
	if err != nil {
		m.logger.Warnf("Failed to read metrics file: %v", err)
		return
	}

	loaded := newMetrics()
	if err := json.Unmarshal(data, loaded); err != nil {
		m.logger.Warnf("Failed to parse metrics file: %v", err)
		return
	}
	if loaded.SieveMetrics == nil {
		loaded.SieveMetrics = make(map[string]SieveMetric)
	}
	if loaded.ErrorKinds == nil {
		loaded.ErrorKinds = make(map[string]int)
	}
	if loaded.LookupKinds == nil {
		loaded.LookupKinds = make(map[string]int)
	}
	m.metrics = loaded

	m.logger.Info("Loaded existing metrics from file")
}

// saveMetrics must be called with mu held.
func (m *Monitor) saveMetrics() {
	data, err := json.MarshalIndent(m.metrics, "", "  ")
	if err != nil {
		m.logger.Errorf("Failed to marshal metrics: %v", err)
		return
	}

	if dir := filepath.Dir(m.metricsFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			m.logger.Errorf("Failed to create metrics directory: %v", err)
			return
		}
	}
	if err := os.WriteFile(m.metricsFile, data, 0644); err != nil {
		m.logger.Errorf("Failed to save metrics: %v", err)
	}
}

type AlertThresholds struct {
	StaleAfter       time.Duration
	MaxErrorRate     float64
	MaxUnhandledRate float64
}

// AlertManager handles alerting based on metrics
type AlertManager struct {
	monitor    *Monitor
	thresholds AlertThresholds
	logger     *logrus.Logger
}

func NewAlertManager(monitor *Monitor, thresholds AlertThresholds, logger *logrus.Logger) *AlertManager {
	return &AlertManager{
		monitor:    monitor,
		thresholds: thresholds,
		logger:     logger,
	}
}

func (am *AlertManager) CheckAlerts() []string {
	var alerts []string
	metrics := am.monitor.GetMetrics()

	if metrics.Lookups == 0 {
		return append(alerts, "ALERT: No lookups have been recorded")
	}
	if am.monitor.now().Sub(metrics.LastRun) > am.thresholds.StaleAfter {
		alerts = append(alerts, fmt.Sprintf("ALERT: No lookups in over %s", am.thresholds.StaleAfter))
	}
	if metrics.ErrorRate > am.thresholds.MaxErrorRate {
		alerts = append(alerts, fmt.Sprintf("ALERT: High error rate: %.2f%%", metrics.ErrorRate*100))
	}
	// a rising unhandled rate means Facebook shipped a layout no sieve knows
	if metrics.UnhandledRate > am.thresholds.MaxUnhandledRate {
		alerts = append(alerts, fmt.Sprintf("ALERT: High unhandled content rate: %.2f%%", metrics.UnhandledRate*100))
	}
	return alerts
}

func (am *AlertManager) SendAlerts(alerts []string) {
	for _, alert := range alerts {
		am.logger.Warn(alert)
	}
}
