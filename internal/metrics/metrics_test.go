package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if webFetchesTotal == nil || cacheLookupsTotal == nil || extractionsTotal == nil ||
		citationOpsTotal == nil || httpRequestsTotal == nil || httpRequestDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	ObserveFetch("success")
	if val := testutil.ToFloat64(webFetchesTotal.WithLabelValues("success")); val != 1 {
		t.Errorf("expected fetch counter to be 1, got %f", val)
	}

	ObserveCacheLookup(true)
	ObserveCacheLookup(false)
	if val := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("hit")); val != 1 {
		t.Errorf("expected one cache hit, got %f", val)
	}
	if val := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("miss")); val != 1 {
		t.Errorf("expected one cache miss, got %f", val)
	}

	ObserveCitationOp("create", "success")
	if val := testutil.ToFloat64(citationOpsTotal.WithLabelValues("create", "success")); val != 1 {
		t.Errorf("expected one citation create, got %f", val)
	}
}
