package metrics

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricsNamespace = "reporter"

// Debug mirrors metric updates into the debug log.
var Debug bool = true

var validKinds = []types.Kind{types.KindPass, types.KindFail, types.KindBroken, types.KindError}

// Per-run metrics all carry the profile and run_id labels.
var runLabels = []string{"profile", "run_id"}

func runCounter(name, help string, extra ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      name,
		Help:      help,
	}, append(append([]string{}, runLabels...), extra...))
}

func runGauge(name, help string, extra ...string) *prometheus.GaugeVec {
	return promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      name,
		Help:      help,
	}, append(append([]string{}, runLabels...), extra...))
}

var (
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{"error"})

	outcomesTotal          = runCounter("outcomes_total", "Count of outcomes in normalized reports", "section", "kind")
	reportResults          = runGauge("report_results", "Result of report runs", "result")
	reportTestsTotal       = runCounter("report_tests_total", "Total number of tests in a report")
	reportTestsPassed      = runCounter("report_tests_passed", "Number of passed tests in a report")
	reportTestsFailed      = runCounter("report_tests_failed", "Number of failed tests in a report")
	reportDuration         = runGauge("report_duration", "Duration attributed to a report's tests")
	propertyConflictsTotal = runCounter("property_conflicts_total", "Count of property conflicts found during normalization")
	strayLeavesTotal       = runCounter("stray_leaves_total", "Count of root-level outcomes bucketed under the top-level group")
)

func debugMetric(op, name string, kv ...any) {
	if Debug {
		args := append([]any{"m", name}, kv...)
		log.Debug("metric "+op, args...)
	}
}

// RecordError counts an error occurrence under its label.
func RecordError(name string) {
	debugMetric("inc", "errors_total", "error", name)
	errorsTotal.WithLabelValues(name).Inc()
}

// RecordErrorDetails folds the error text into the label so spikes can
// be traced back to a message.
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	RecordError(fmt.Sprintf("%s.%s", label, sanitizeLabel(err)))
}

// RecordOutcome counts one leaf outcome of a normalized report.
func RecordOutcome(profile, runID, section string, kind types.Kind) {
	if !slices.Contains(validKinds, kind) {
		log.Error("RecordOutcome - invalid kind", "kind", kind)
		return
	}
	debugMetric("inc", "outcomes_total", "profile", profile, "run_id", runID, "section", section, "kind", kind)
	outcomesTotal.WithLabelValues(profile, runID, section, string(kind)).Inc()
}

// RecordReport publishes the headline numbers of a finished run.
func RecordReport(profile, runID, result string, total, passed, failed int, duration time.Duration) {
	debugMetric("set", "report_results", "profile", profile, "run_id", runID, "result", result)
	reportResults.WithLabelValues(profile, runID, result).Set(1)
	reportTestsTotal.WithLabelValues(profile, runID).Add(float64(total))
	reportTestsPassed.WithLabelValues(profile, runID).Add(float64(passed))
	reportTestsFailed.WithLabelValues(profile, runID).Add(float64(failed))
	reportDuration.WithLabelValues(profile, runID).Set(duration.Seconds())
}

// RecordPropertyConflicts counts property keys overridden during
// normalization.
func RecordPropertyConflicts(profile, runID string, count int) {
	if count == 0 {
		return
	}
	debugMetric("add", "property_conflicts_total", "profile", profile, "run_id", runID, "count", count)
	propertyConflictsTotal.WithLabelValues(profile, runID).Add(float64(count))
}

// RecordStrayLeaves counts root-level outcomes that had to be bucketed
// under the top-level group.
func RecordStrayLeaves(profile, runID string, count int) {
	if count == 0 {
		return
	}
	debugMetric("add", "stray_leaves_total", "profile", profile, "run_id", runID, "count", count)
	strayLeavesTotal.WithLabelValues(profile, runID).Add(float64(count))
}

// sanitizeLabel reduces an error message to letters and underscores so
// it can serve as a Prometheus label value.
func sanitizeLabel(err error) string {
	if err == nil {
		return "nil"
	}
	letters := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == ' ' {
			return r
		}
		return -1
	}, err.Error())
	return strings.Join(strings.Fields(letters), "_")
}
