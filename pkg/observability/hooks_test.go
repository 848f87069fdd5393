package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "metro.yml")
	p.OnLoadComplete(ctx, "metro.yml", 3, 2, time.Millisecond, nil)
	p.OnRenderStart(ctx, "html")
	p.OnRenderComplete(ctx, "html", 4096, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "html")
	c.OnCacheMiss(ctx, "dot")
	c.OnCacheSet(ctx, "svg", 1024)
	c.OnCacheError(ctx, "svg", errors.New("down"))

	NoopHTTPHooks{}.OnRequest(ctx, "GET", "/api/lines", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() default is not a no-op")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() default is not a no-op")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() default is not a no-op")
	}

	h := NewLogHooks(log.New(&bytes.Buffer{}))
	h.Register()
	if Pipeline() != h || Cache() != h || HTTP() != h {
		t.Error("Register did not install every category")
	}

	SetPipelineHooks(nil)
	if Pipeline() != h {
		t.Error("SetPipelineHooks(nil) replaced the hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() did not restore the no-op")
	}
}

func TestLogHooks(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)

	h.OnLoadComplete(ctx, "metro.yml", 3, 2, time.Millisecond, nil)
	h.OnRenderComplete(ctx, "dot", 0, 0, errors.New("graphviz exploded"))
	h.OnCacheHit(ctx, "html")
	h.OnRequest(ctx, "GET", "/healthz", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"loaded", "stations=3", "lines=2",
		"render failed", "graphviz exploded",
		"cache hit", "kind=html",
		"request", "path=/healthz", "status=200",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksRespectLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	h.OnCacheMiss(context.Background(), "html")
	if buf.Len() != 0 {
		t.Errorf("debug event logged at info level: %q", buf.String())
	}
}
