package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopReadHooks{}
	r.OnReadStart(ctx, "page_graph.graphml")
	r.OnReadComplete(ctx, "page_graph.graphml", 10, 12, time.Second, nil)
	r.OnFrameMerged(ctx, "0A1B2C3D4E5F60718293A4B5C6D7E8F9", 3, 4)

	q := NoopQueryHooks{}
	q.OnQueryStart(ctx, "scripts")
	q.OnQueryComplete(ctx, "scripts", 4, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "query")
	c.OnCacheMiss(ctx, "query")
	c.OnCacheSet(ctx, "query", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/graphs/{graphID}")
	h.OnResponse(ctx, "GET", "/graphs/{graphID}", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Read().(NoopReadHooks); !ok {
		t.Error("Read() should return NoopReadHooks by default")
	}
	if _, ok := Query().(NoopQueryHooks); !ok {
		t.Error("Query() should return NoopQueryHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customRead := &testReadHooks{}
	SetReadHooks(customRead)
	if Read() != customRead {
		t.Error("SetReadHooks should set custom hooks")
	}

	customQuery := &testQueryHooks{}
	SetQueryHooks(customQuery)
	if Query() != customQuery {
		t.Error("SetQueryHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Read().(NoopReadHooks); !ok {
		t.Error("Reset() should restore NoopReadHooks")
	}
	if _, ok := Query().(NoopQueryHooks); !ok {
		t.Error("Reset() should restore NoopQueryHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testReadHooks{}
	SetReadHooks(custom)
	SetReadHooks(nil)

	if Read() != custom {
		t.Error("SetReadHooks(nil) should be ignored")
	}

	Reset()
}

type testReadHooks struct{ NoopReadHooks }
type testQueryHooks struct{ NoopQueryHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
