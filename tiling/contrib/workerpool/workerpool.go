// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent pool of goroutines that run
// per-core programs. A Pool is created once and reused across launches, so a
// launch costs one channel send per core instead of one goroutine spawn.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	err := pool.Run(plan.UsedCoreCount(), func(core int) error {
//	    return runCore(core)
//	})
package workerpool

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// Pool is a persistent worker pool. Workers are spawned once at creation and
// reused until Close.
type Pool struct {
	numWorkers int
	taskC      chan task

	// mu guards closed. Run holds it shared while sending on taskC, so Close
	// never closes taskC under a pending send.
	mu     sync.RWMutex
	closed bool
}

// task is one core program of a Run call.
type task struct {
	core    int
	program func(core int) error
	errs    []error
	barrier *sync.WaitGroup
}

// New creates a pool with numWorkers workers. If numWorkers <= 0, uses
// GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		taskC:      make(chan task, numWorkers*2),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for t := range p.taskC {
		t.errs[t.core] = runProgram(t.core, t.program)
		t.barrier.Done()
	}
}

// runProgram returns the panic of a program as its error.
func runProgram(core int, program func(core int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("core %d panicked: %v", core, r)
		}
	}()
	return program(core)
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the pool. Pending programs complete. Calling Close more
// than once is safe, and so is calling it while Run is in progress: Close
// waits until the running Run calls have handed all their programs to the
// workers, and later Run calls run sequentially.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.taskC)
}

// Run executes program(core) for every core in [0, n) and blocks until all of
// them return. Programs run with no ordering guarantee between cores.
//
// The returned error joins the errors of all failed cores, in core order.
// On a closed pool the programs run sequentially on the caller's goroutine.
func (p *Pool) Run(n int, program func(core int) error) error {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return runProgram(0, program)
	}
	errs := make([]error, n)

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		for core := range n {
			errs[core] = runProgram(core, program)
		}
		return errors.Join(errs...)
	}
	var wg sync.WaitGroup
	wg.Add(n)
	for core := range n {
		p.taskC <- task{core: core, program: program, errs: errs, barrier: &wg}
	}
	p.mu.RUnlock()
	wg.Wait()
	return errors.Join(errs...)
}
