// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"errors"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestRun(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	// More cores than workers and queue slots.
	n := 100
	results := make([]int, n)
	err := pool.Run(n, func(core int) error {
		results[core] = core * 2
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestRunZero(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	var calls atomic.Int32
	if err := pool.Run(0, func(int) error { calls.Add(1); return nil }); err != nil {
		t.Errorf("Run(0) = %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("Run(0) called the program %d times", calls.Load())
	}
}

func TestRunErrors(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	errOdd := errors.New("odd core")
	var calls atomic.Int32
	err := pool.Run(10, func(core int) error {
		calls.Add(1)
		if core%2 == 1 {
			return errOdd
		}
		return nil
	})
	if !errors.Is(err, errOdd) {
		t.Fatalf("Run error = %v, want errOdd", err)
	}
	// Every core runs even when some fail.
	if calls.Load() != 10 {
		t.Errorf("program ran %d times, want 10", calls.Load())
	}
	if got := strings.Count(err.Error(), "odd core"); got != 5 {
		t.Errorf("joined error has %d failures, want 5: %v", got, err)
	}
}

func TestRunPanic(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	err := pool.Run(4, func(core int) error {
		if core == 3 {
			panic("boom")
		}
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "core 3 panicked: boom") {
		t.Errorf("Run error = %v, want the core 3 panic", err)
	}

	// The pool still works.
	if err := pool.Run(4, func(int) error { return nil }); err != nil {
		t.Errorf("Run after panic: %v", err)
	}
}

func TestRunAfterClose(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close()

	var sum atomic.Int64
	err := pool.Run(10, func(core int) error {
		sum.Add(int64(core))
		return nil
	})
	if err != nil {
		t.Fatalf("Run on closed pool: %v", err)
	}
	if sum.Load() != 45 {
		t.Errorf("sum = %d, want 45", sum.Load())
	}
}

func TestCloseDuringRun(t *testing.T) {
	for range 20 {
		pool := New(2)
		var total atomic.Int64
		var wg sync.WaitGroup
		for range 8 {
			wg.Go(func() {
				for range 20 {
					if err := pool.Run(16, func(int) error {
						total.Add(1)
						return nil
					}); err != nil {
						t.Errorf("Run: %v", err)
					}
				}
			})
		}
		wg.Go(pool.Close)
		wg.Wait()
		if got := total.Load(); got != 8*20*16 {
			t.Fatalf("programs ran %d times, want %d", got, 8*20*16)
		}
	}
}

func TestReuse(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var total atomic.Int64
	for range 50 {
		_ = pool.Run(8, func(core int) error {
			total.Add(1)
			return nil
		})
	}
	if total.Load() != 400 {
		t.Errorf("total = %d, want 400", total.Load())
	}
}

func BenchmarkRun(b *testing.B) {
	pool := New(runtime.GOMAXPROCS(0))
	defer pool.Close()
	var sink atomic.Int64
	for b.Loop() {
		_ = pool.Run(40, func(core int) error {
			sink.Add(int64(core))
			return nil
		})
	}
}
