// Package metrics exposes fire-and-forget Prometheus counters for the signup
// funnel. Counters are advisory only and are never read back by the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tuaspower/signupflow/internal/models"
)

var (
	// SessionsStarted counts new conversation sessions.
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signup_sessions_started_total",
		Help: "Total number of signup conversations started",
	})

	// SignupsCompleted counts finalized applications.
	SignupsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signup_completed_total",
		Help: "Total number of completed signups",
	})

	// SessionsAbandoned counts sessions that idled out, labeled by the stage
	// they were abandoned at.
	SessionsAbandoned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signup_sessions_abandoned_total",
		Help: "Total number of abandoned signup conversations by stage",
	}, []string{"stage"})

	// Rejections counts screening rejections by reason.
	Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signup_rejections_total",
		Help: "Total number of rejected signups by rejection reason",
	}, []string{"reason"})

	// PlanSelections counts plan choices by plan key (e.g. PowerFIX24).
	PlanSelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signup_plan_selections_total",
		Help: "Total number of plan selections by plan",
	}, []string{"plan"})

	// CustomerTypes counts identified customer types.
	CustomerTypes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signup_customer_types_total",
		Help: "Total number of identified customer types",
	}, []string{"customer_type"})
)

// init pre-registers the label values so dashboards see zero series before
// the first event.
func init() {
	for _, stage := range models.AllStages {
		SessionsAbandoned.WithLabelValues(string(stage))
	}
	for _, reason := range models.AllRejectionReasons {
		Rejections.WithLabelValues(string(reason))
	}
	CustomerTypes.WithLabelValues(string(models.CustomerTypeSP))
	CustomerTypes.WithLabelValues(string(models.CustomerTypeRetailer))
}
