package pqueue

import (
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/google/btree"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entry orders an oracle multiset by value, then insertion sequence, so equal
// bytes do not replace one another in the btree.
type entry struct {
	value byte
	seq   int
}

func entryLess(a, b entry) bool {
	if a.value != b.value {
		return a.value < b.value
	}
	return a.seq < b.seq
}

func oracle(values []byte) []byte {
	tr := btree.NewG[entry](8, entryLess)
	for i, v := range values {
		tr.ReplaceOrInsert(entry{value: v, seq: i})
	}
	out := make([]byte, 0, tr.Len())
	tr.Ascend(func(e entry) bool {
		out = append(out, e.value)
		return true
	})
	return out
}

func drainAll(t *testing.T, q *Queue[byte]) []byte {
	t.Helper()
	var out []byte
	require.NoError(t, q.Drain(func(b byte) error {
		out = append(out, b)
		return nil
	}))
	return out
}

func TestEmptyQueue(t *testing.T) {
	q := New[byte](Ascending)
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Len())

	_, err := q.Dequeue()
	require.ErrorIs(t, err, ErrEmpty)
	_, err = q.Peek()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestPeekDoesNotMutate(t *testing.T) {
	q := New[byte](Ascending)
	q.Enqueue(9)
	q.Enqueue(2)
	v, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, byte(2), v)
	assert.Equal(t, 2, q.Len())
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name  string
		order Order
		in    []byte
		want  []byte
	}{
		{"two partitions", Ascending, []byte{5, 3, 3, 1}, []byte{1, 3, 3, 5}},
		{"extremes", Ascending, []byte{255, 0, 128}, []byte{0, 128, 255}},
		{"descending", Descending, []byte{5, 3, 3, 1}, []byte{5, 3, 3, 1}},
		{"descending extremes", Descending, []byte{0, 255, 128, 0}, []byte{255, 128, 0, 0}},
		{"empty", Ascending, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New[byte](tt.order)
			for _, b := range tt.in {
				q.Enqueue(b)
			}
			assert.Equal(t, tt.want, drainAll(t, q))
			assert.True(t, q.IsEmpty())
		})
	}
}

func TestRoundTripMatchesOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		values := make([]byte, rng.Intn(3000))
		rng.Read(values)

		q := New[byte](Ascending)
		for _, v := range values {
			q.Enqueue(v)
		}
		require.Equal(t, oracle(values), q.Snapshot())
		got := drainAll(t, q)
		require.Equal(t, oracle(values), got, "round %d", round)

		_, err := q.Dequeue()
		require.ErrorIs(t, err, ErrEmpty)
	}
}

func TestConcurrentEnqueueIsOrderIndependent(t *testing.T) {
	const workers = 16
	const perWorker = 2000

	rng := rand.New(rand.NewSource(3))
	chunks := make([][]byte, workers)
	var all []byte
	for i := range chunks {
		chunks[i] = make([]byte, perWorker)
		rng.Read(chunks[i])
		all = append(all, chunks[i]...)
	}

	q := New[byte](Ascending)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range chunks {
		go func(chunk []byte) {
			defer wg.Done()
			for _, b := range chunk {
				q.Enqueue(b)
			}
		}(chunks[i])
	}
	wg.Wait()

	sequential := New[byte](Ascending)
	for _, b := range all {
		sequential.Enqueue(b)
	}

	require.Equal(t, workers*perWorker, q.Len())
	assert.Equal(t, drainAll(t, sequential), drainAll(t, q))
}

func TestConcurrentMixedOperations(t *testing.T) {
	q := New[int](Ascending)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				q.Enqueue(w*1000 + i)
				if i%3 == 0 {
					_, _ = q.Peek()
					_ = q.Len()
				}
			}
		}(w)
	}
	wg.Wait()

	var got []int
	require.NoError(t, q.Drain(func(v int) error {
		got = append(got, v)
		return nil
	}))
	require.Len(t, got, 4000)
	assert.True(t, sort.IntsAreSorted(got))
}

func TestDrainStopsOnCallbackError(t *testing.T) {
	q := New[byte](Ascending)
	for _, b := range []byte{4, 1, 3, 2} {
		q.Enqueue(b)
	}
	stop := errors.New("stop")
	var seen []byte
	err := q.Drain(func(b byte) error {
		seen = append(seen, b)
		if b == 2 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, []byte{1, 2}, seen)
	assert.Equal(t, 2, q.Len())
}

func TestClear(t *testing.T) {
	q := New[byte](Descending)
	q.Enqueue(1)
	q.Enqueue(2)
	q.Clear()
	assert.True(t, q.IsEmpty())
	assert.Equal(t, Descending, q.Order())
}

func TestOrderString(t *testing.T) {
	assert.Equal(t, "ascending", Ascending.String())
	assert.Equal(t, "descending", Descending.String())
	assert.Equal(t, "unknown", Order(5).String())
}
