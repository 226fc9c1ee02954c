// File path: internal/common/telemetry/telemetry.go

// Package telemetry publishes expvar counters for the note processing
// pipeline and offers lightweight span logging around slow operations.
package telemetry

import (
	"context"
	"expvar"
	"strings"
	"sync"
	"time"

	"github.com/kestrelhealth/medscribe/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

var (
	initOnce sync.Once

	terminologyLookupTotal   *expvar.Map
	terminologyNotFoundTotal *expvar.Map
	terminologyLatencyMS     *expvar.Map
	extractionTotal          *expvar.Int
	extractionFailuresTotal  *expvar.Int
	extractionLatencyMS      *expvar.Int
	chatTurnTotal            *expvar.Map
	knowledgeSearchTotal     *expvar.Int
	knowledgeSearchLatencyMS *expvar.Int
	indexedChunksTotal       *expvar.Int
)

func ensureInit() {
	initOnce.Do(func() {
		terminologyLookupTotal = expvar.NewMap("medscribe_terminology_lookups_total")
		terminologyNotFoundTotal = expvar.NewMap("medscribe_terminology_not_found_total")
		terminologyLatencyMS = expvar.NewMap("medscribe_terminology_latency_ms")

		extractionTotal = expvar.NewInt("medscribe_extractions_total")
		extractionFailuresTotal = expvar.NewInt("medscribe_extraction_failures_total")
		extractionLatencyMS = expvar.NewInt("medscribe_extraction_latency_ms")

		chatTurnTotal = expvar.NewMap("medscribe_chat_turns_total")

		knowledgeSearchTotal = expvar.NewInt("medscribe_knowledge_searches_total")
		knowledgeSearchLatencyMS = expvar.NewInt("medscribe_knowledge_search_latency_ms")
		indexedChunksTotal = expvar.NewInt("medscribe_indexed_chunks_total")
	})
}

// StartSpan logs span start and returns a closer that logs the duration.
func StartSpan(ctx context.Context, name string) (context.Context, func(attrs ...interface{})) {
	ensureInit()
	sp := &span{name: name, start: time.Now()}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	logger := common.Logger()
	logger.Debug("trace: start", "span", name)
	return ctx, func(attrs ...interface{}) {
		if sp == nil {
			return
		}
		duration := time.Since(sp.start)
		logger.Debug("trace: end", append([]interface{}{"span", name, "dur", duration}, attrs...)...)
	}
}

// RecordTerminologyLookup counts a code lookup by vocabulary ("rxnorm" or
// "icd10cm") and whether it resolved to a code.
func RecordTerminologyLookup(vocabulary string, found bool, duration time.Duration) {
	ensureInit()
	key := strings.TrimSpace(strings.ToLower(vocabulary))
	if key == "" {
		key = "unknown"
	}
	terminologyLookupTotal.Add(key, 1)
	if !found {
		terminologyNotFoundTotal.Add(key, 1)
	}
	if duration > 0 {
		terminologyLatencyMS.Add(key, duration.Milliseconds())
	}
}

// RecordExtraction counts one structured extraction pass over a note.
func RecordExtraction(duration time.Duration, err error) {
	ensureInit()
	extractionTotal.Add(1)
	if err != nil {
		extractionFailuresTotal.Add(1)
	}
	if duration > 0 {
		extractionLatencyMS.Add(duration.Milliseconds())
	}
}

// RecordChatTurn counts one routed conversation turn by intent kind.
func RecordChatTurn(kind string) {
	ensureInit()
	key := strings.TrimSpace(strings.ToLower(kind))
	if key == "" {
		key = "unknown"
	}
	chatTurnTotal.Add(key, 1)
}

// RecordKnowledgeSearch counts one similarity search over the note index.
func RecordKnowledgeSearch(duration time.Duration) {
	ensureInit()
	knowledgeSearchTotal.Add(1)
	if duration > 0 {
		knowledgeSearchLatencyMS.Add(duration.Milliseconds())
	}
}

// RecordIndexedChunks counts chunks written to the vector index.
func RecordIndexedChunks(chunks int) {
	ensureInit()
	if chunks <= 0 {
		return
	}
	indexedChunksTotal.Add(int64(chunks))
}

// SpanDuration reports the elapsed time of the span carried by ctx.
func SpanDuration(ctx context.Context) time.Duration {
	sp, _ := ctx.Value(spanKey{}).(*span)
	if sp == nil {
		return 0
	}
	return time.Since(sp.start)
}
