// Package observability provides tracing and domain metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devconnector_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostEvents counts post activity by kind (created, deleted, liked, unliked, commented, uncommented).
	PostEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_post_events_total",
		Help: "Total post activity by kind",
	}, []string{"kind"})

	// ProfileEvents counts profile writes by kind.
	ProfileEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_profile_events_total",
		Help: "Total profile writes by kind",
	}, []string{"kind"})

	// GithubLookups counts repository lookups by outcome (ok, not_found, error).
	GithubLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_github_lookups_total",
		Help: "Total GitHub repository lookups by outcome",
	}, []string{"outcome"})

	// AuthEvents counts registrations, logins and failures.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_auth_events_total",
		Help: "Total authentication events by kind",
	}, []string{"kind"})

	// WebSocketBackpressureDrops counts feed messages dropped for slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_websocket_backpressure_drops_total",
		Help: "Total websocket messages dropped by reason",
	}, []string{"reason"})
)

const queryStartKey = "observability:query_start"

// RegisterQueryMetrics installs GORM callbacks that feed DatabaseQueryLatency.
func RegisterQueryMetrics(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	steps := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, s := range steps {
		if err := s.before("metrics:before_"+s.op, before); err != nil {
			return err
		}
		if err := s.after("metrics:after_"+s.op, after(s.op)); err != nil {
			return err
		}
	}
	return nil
}
