package metrics

import (
	"time"

	"github.com/moviedata/reception/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// ReceptionMetrics tracks the engine. It satisfies reception.Recorder.
type ReceptionMetrics struct {
	ReviewsScored   prometheus.Counter
	ReviewsSkipped  *prometheus.CounterVec
	Profiles        *prometheus.CounterVec
	ProfileDuration prometheus.Histogram
}

func NewReceptionMetrics(reg prometheus.Registerer) *ReceptionMetrics {
	m := &ReceptionMetrics{
		ReviewsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_scored_total",
			Help:      "Total number of reviews that produced a composite score.",
		}),
		ReviewsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_skipped_total",
			Help:      "Total number of reviews skipped during scoring, by reason.",
		}, []string{"reason"}),
		Profiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiles_total",
			Help:      "Total number of reception profiles built, by film type.",
		}, []string{"film_type"}),
		ProfileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "profile_duration_seconds",
			Help:      "Time to build one reception profile.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}

	reg.MustRegister(m.ReviewsScored, m.ReviewsSkipped, m.Profiles, m.ProfileDuration)
	return m
}

func (m *ReceptionMetrics) ReviewScored() { m.ReviewsScored.Inc() }

func (m *ReceptionMetrics) ReviewSkipped(reason string) {
	m.ReviewsSkipped.WithLabelValues(reason).Inc()
}

func (m *ReceptionMetrics) ProfileBuilt(filmType domain.FilmType, elapsed time.Duration) {
	label := string(filmType)
	if label == "" {
		label = "none"
	}
	m.Profiles.WithLabelValues(label).Inc()
	m.ProfileDuration.Observe(elapsed.Seconds())
}
