package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ArticlesCreated counts persisted articles.
	ArticlesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_articles_created_total",
		Help: "Total number of articles created",
	})

	// ArticlesDeleted counts removed articles by the role of the remover.
	ArticlesDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_articles_deleted_total",
		Help: "Total number of articles deleted",
	}, []string{"actor"})

	// ArticleViews counts view-counter increments.
	ArticleViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_article_views_total",
		Help: "Total number of article detail views",
	})

	// CommentsWritten counts comment mutations by operation.
	CommentsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_comment_writes_total",
		Help: "Total number of comment create/update/delete operations",
	}, []string{"operation"})

	// Registrations counts sign-up attempts by outcome.
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_registrations_total",
		Help: "Total number of registration attempts",
	}, []string{"outcome"})

	// Logins counts sign-in attempts by outcome.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_logins_total",
		Help: "Total number of login attempts",
	}, []string{"outcome"})

	// AuthorizationDenials counts ownership checks that failed.
	AuthorizationDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_authorization_denials_total",
		Help: "Total number of rejected owner-only operations",
	}, []string{"operation"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// DatabaseQueryLatency records GORM statement latency by operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)
