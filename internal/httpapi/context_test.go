package httpapi

import (
	"context"
	"testing"
	"time"
)

func TestJoinContexts_CancelsWhenEitherDone(t *testing.T) {
	a, cancelA := context.WithCancel(context.Background())
	ctx, cancel := joinContexts(a, context.Background())
	defer cancel()
	cancelA()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("joined context not canceled after a")
	}

	b, cancelB := context.WithCancel(context.Background())
	ctx2, cancel2 := joinContexts(context.Background(), b)
	defer cancel2()
	cancelB()
	select {
	case <-ctx2.Done():
	case <-time.After(time.Second):
		t.Fatalf("joined context not canceled after b")
	}
}

func TestRequestContext_BaseCancel(t *testing.T) {
	base, cancelBase := context.WithCancel(context.Background())
	SetBaseContext(base)
	defer SetBaseContext(nil)

	ctx, cancel := requestContext(context.Background())
	defer cancel()
	cancelBase()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("request context survived base cancel")
	}
}

func TestSetBaseContext_NilResets(t *testing.T) {
	SetBaseContext(nil)
	if serverBaseCtx != context.Background() {
		t.Fatalf("nil base context not reset to Background")
	}
}

func TestConfigSetters(t *testing.T) {
	defer SetMaxBodyBytes(0)
	SetMaxBodyBytes(4096)
	if maxBodyBytes != 4096 {
		t.Fatalf("maxBodyBytes=%d", maxBodyBytes)
	}
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<10 {
		t.Fatalf("maxBodyBytes not reset: %d", maxBodyBytes)
	}

	defer SetRequestTimeout(0)
	SetRequestTimeout(-time.Second)
	if requestTimeout != 0 {
		t.Fatalf("negative timeout kept: %v", requestTimeout)
	}
	SetRequestTimeout(2 * time.Second)
	ctx, cancel := requestContext(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatalf("expected deadline with request timeout set")
	}
}
