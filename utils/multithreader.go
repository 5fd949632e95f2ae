// Package utils holds the small pieces of machinery shared by the layers.
package utils

import (
	"runtime"
	"sync"

	"go.uber.org/atomic"
)

// Multithreads an operation on a range of integers
//
// should be run sequentially, not in a separate thread
// designed for use by layers in their mass calculations
//
// the range includes 'start' and excludes 'end'
//  - nothing is run if end ≤ start
// 'f' is the function that should be run for each value in the range
// 'opsPerThread' is the number of operations that each goroutine will handle before requesting
// another set
// 'threadsPerCPU' is the number of goroutines created for each CPU
//
// both are treated as 1 if < 1. No more goroutines are started than there are operations.
func MultiThread(start, end int, f func(int), opsPerThread, threadsPerCPU int) {
	if end <= start {
		return
	}

	if opsPerThread < 1 {
		opsPerThread = 1
	}
	if threadsPerCPU < 1 {
		threadsPerCPU = 1
	}

	numThreads := runtime.NumCPU() * threadsPerCPU
	if chunks := (end - start + opsPerThread - 1) / opsPerThread; chunks < numThreads {
		numThreads = chunks
	}

	// single chunk; not worth a goroutine
	if numThreads == 1 {
		for i := start; i < end; i++ {
			f(i)
		}
		return
	}

	next := atomic.NewInt64(int64(start))

	var wg sync.WaitGroup
	wg.Add(numThreads)
	for thread := 0; thread < numThreads; thread++ {
		go func() {
			defer wg.Done()

			for {
				e := int(next.Add(int64(opsPerThread)))
				i := e - opsPerThread
				if i >= end {
					return
				}

				if e > end {
					e = end
				}

				for ; i < e; i++ {
					f(i)
				}
			}
		}()
	}

	wg.Wait()
}
