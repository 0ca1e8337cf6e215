package protocol

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/tmux-control-go/internal/errors"
)

func TestQueue_PushDrainOrder(t *testing.T) {
	q := NewQueue[int]()

	for i := range 5 {
		require.NoError(t, q.Push(i))
	}

	require.Equal(t, 5, q.Len())
	require.Equal(t, []int{0, 1, 2, 3, 4}, q.Drain())
	require.Nil(t, q.Drain())
	require.Zero(t, q.Len())
}

func TestQueue_ReadySignalled(t *testing.T) {
	q := NewQueue[string]()

	select {
	case <-q.Ready():
		t.Fatal("empty queue should not be ready")
	default:
	}

	require.NoError(t, q.Push("a"))
	require.NoError(t, q.Push("b"))

	select {
	case <-q.Ready():
	default:
		t.Fatal("queue should be ready after push")
	}

	require.Equal(t, []string{"a", "b"}, q.Drain())
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue[int]()
	require.NoError(t, q.Push(1))

	q.Close()
	q.Close()

	require.True(t, q.Closed())
	require.ErrorIs(t, q.Push(2), errors.ErrQueueClosed)
	require.Equal(t, []int{1}, q.Drain(), "closed queue still hands out queued items")

	select {
	case <-q.Ready():
	default:
		t.Fatal("close should wake consumers")
	}
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := NewQueue[int]()

	var wg sync.WaitGroup

	for i := range 50 {
		wg.Go(func() {
			_ = q.Push(i)
		})
	}

	wg.Wait()

	require.Len(t, q.Drain(), 50)
}
