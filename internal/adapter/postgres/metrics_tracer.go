package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// QueryRecorder receives one observation per query.
type QueryRecorder interface {
	QueryDone(query string, failed bool, elapsed time.Duration)
}

// MetricsTracer implements pgx.QueryTracer to collect database metrics.
type MetricsTracer struct {
	recorder QueryRecorder
}

var _ pgx.QueryTracer = (*MetricsTracer)(nil)

func NewMetricsTracer(recorder QueryRecorder) *MetricsTracer {
	return &MetricsTracer{recorder: recorder}
}

type queryContextKey struct{}

type queryContext struct {
	startTime time.Time
	queryName string
}

func (t *MetricsTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryContextKey{}, queryContext{
		startTime: time.Now(),
		queryName: extractQueryName(data.SQL),
	})
}

func (t *MetricsTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qctx, ok := ctx.Value(queryContextKey{}).(queryContext)
	if !ok {
		return
	}
	t.recorder.QueryDone(qctx.queryName, data.Err != nil, time.Since(qctx.startTime))
}

// extractQueryName reduces SQL to its leading keyword to keep label
// cardinality low.
func extractQueryName(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	name := strings.ToUpper(fields[0])
	if len(name) > 20 {
		return name[:20]
	}
	return name
}
