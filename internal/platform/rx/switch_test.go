package rx

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSwitchMap_ForwardsOnlyLatestInner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan string)
	inners := map[string]chan string{
		"a": make(chan string),
		"b": make(chan string),
	}
	cancelled := make(chan string, 2)

	out := SwitchMap(ctx, in, func(innerCtx context.Context, key string) <-chan string {
		go func() {
			<-innerCtx.Done()
			cancelled <- key
		}()
		return inners[key]
	})

	in <- "a"
	inners["a"] <- "a1"
	assert.Equal(t, "a1", receive(t, out))

	in <- "b"
	assert.Equal(t, "a", receive[string](t, cancelled))

	// The replaced inner stream can no longer deliver anything.
	select {
	case inners["a"] <- "a2":
		t.Fatal("stale inner stream is still being read")
	default:
	}

	inners["b"] <- "b1"
	assert.Equal(t, "b1", receive(t, out))
}

func TestSwitchMap_ClosesAfterOuterAndInnerComplete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan int)
	out := SwitchMap(ctx, in, func(_ context.Context, n int) <-chan string {
		return Just(fmt.Sprintf("%d-x", n), fmt.Sprintf("%d-y", n))
	})

	in <- 1
	assert.Equal(t, "1-x", receive(t, out))
	assert.Equal(t, "1-y", receive(t, out))
	close(in)
	assertClosed(t, out)
}

func TestSwitchMap_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	in := make(chan int)
	innerDone := make(chan struct{})
	out := SwitchMap(ctx, in, func(innerCtx context.Context, _ int) <-chan int {
		go func() {
			<-innerCtx.Done()
			close(innerDone)
		}()
		return make(chan int)
	})

	in <- 1
	cancel()
	assertClosed(t, out)

	select {
	case <-innerDone:
	case <-time.After(time.Second):
		t.Fatal("inner context was not cancelled")
	}
}
