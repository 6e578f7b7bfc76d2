package parallel

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dd0wney/libcert/pkg/logging"
)

func newTestPool(t *testing.T, workers int) *WorkerPool {
	t.Helper()
	pool, err := NewWorkerPool(workers)
	if err != nil {
		t.Fatalf("NewWorkerPool(%d) error = %v", workers, err)
	}
	return pool
}

// TestWorkerPoolBasicOperations tests basic worker pool functionality
func TestWorkerPoolBasicOperations(t *testing.T) {
	pool := newTestPool(t, 4)
	defer pool.Close()

	// Submit a simple task
	executed := false
	success := pool.Submit(func() {
		executed = true
	})

	if !success {
		t.Error("Task submission failed")
	}

	// Wait for task to complete
	pool.Close()

	if !executed {
		t.Error("Task was not executed")
	}
}

// TestWorkerPoolConcurrentSubmissions tests concurrent task submissions
func TestWorkerPoolConcurrentSubmissions(t *testing.T) {
	pool := newTestPool(t, 10)
	defer pool.Close()

	numTasks := 100
	var counter int64

	var wg sync.WaitGroup
	for i := 0; i < numTasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Submit(func() {
				atomic.AddInt64(&counter, 1)
			})
		}()
	}

	wg.Wait()
	pool.Close()

	if counter != int64(numTasks) {
		t.Errorf("Expected counter %d, got %d", numTasks, counter)
	}
}

// TestWorkerPoolCloseRace tests the close race condition fix
// This validates that closing the pool while submitting tasks doesn't panic
func TestWorkerPoolCloseRace(t *testing.T) {
	numIterations := 100

	for iteration := 0; iteration < numIterations; iteration++ {
		pool := newTestPool(t, 4)

		// Start submitting tasks concurrently
		var wg sync.WaitGroup
		numSubmitters := 10

		for i := 0; i < numSubmitters; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					// Try to submit - might fail if closed
					pool.Submit(func() {
						time.Sleep(1 * time.Millisecond)
					})
				}
			}(i)
		}

		// Close pool concurrently with submissions
		time.Sleep(5 * time.Millisecond)
		pool.Close()

		wg.Wait()
		// If we reach here without panic, the race fix works
	}
}

// TestWorkerPoolSubmitAfterClose tests that submissions after close return false
func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := newTestPool(t, 4)

	// Submit a task before close
	success := pool.Submit(func() {
		time.Sleep(10 * time.Millisecond)
	})
	if !success {
		t.Error("Task submission before close should succeed")
	}

	// Close pool
	pool.Close()

	// Try to submit after close
	success = pool.Submit(func() {
		t.Error("This task should never execute")
	})

	if success {
		t.Error("Task submission after close should return false")
	}
}

// TestWorkerPoolMultipleClose tests that closing multiple times is safe
func TestWorkerPoolMultipleClose(t *testing.T) {
	pool := newTestPool(t, 4)

	// Submit some tasks
	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			time.Sleep(1 * time.Millisecond)
		})
	}

	// Close multiple times - should not panic
	pool.Close()
	pool.Close()
	pool.Close()
}

// TestWorkerPoolConcurrentClose tests concurrent close calls
func TestWorkerPoolConcurrentClose(t *testing.T) {
	pool := newTestPool(t, 4)

	// Submit some tasks
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			time.Sleep(1 * time.Millisecond)
		})
	}

	// Close concurrently from multiple goroutines
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Close()
		}()
	}

	wg.Wait()
}

// TestWorkerPoolTaskExecution tests that all submitted tasks execute
func TestWorkerPoolTaskExecution(t *testing.T) {
	pool := newTestPool(t, 5)
	defer pool.Close()

	numTasks := 50
	executed := make([]bool, numTasks)
	var mu sync.Mutex

	for i := 0; i < numTasks; i++ {
		taskID := i
		pool.Submit(func() {
			mu.Lock()
			executed[taskID] = true
			mu.Unlock()
		})
	}

	pool.Close()

	// Verify all tasks executed
	for i, exec := range executed {
		if !exec {
			t.Errorf("Task %d was not executed", i)
		}
	}
}

// TestWorkerPoolWithPanic tests that panics in tasks don't crash the pool
func TestWorkerPoolWithPanic(t *testing.T) {
	var logBuf bytes.Buffer
	pool, err := NewWorkerPool(4, WithLogger(logging.NewJSONLogger(&logBuf, logging.InfoLevel)))
	if err != nil {
		t.Fatal(err)
	}

	var counter int64

	for i := 0; i < 5; i++ {
		pool.Submit(func() {
			panic("intentional panic")
		})
	}
	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
		})
	}

	pool.Close()

	if counter != 10 {
		t.Errorf("Expected counter 10, got %d", counter)
	}
	if got := strings.Count(logBuf.String(), "worker panic recovered"); got != 5 {
		t.Errorf("Expected 5 recovered panics in log, got %d", got)
	}
}

func TestWorkerPoolSize(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{16, 16},
	}
	for _, tt := range tests {
		pool := newTestPool(t, tt.requested)
		if pool.Workers() != tt.want {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want %d", tt.requested, pool.Workers(), tt.want)
		}
		pool.Close()
	}

	if _, err := NewWorkerPool(math.MaxInt); !errors.Is(err, ErrTooManyWorkers) {
		t.Errorf("NewWorkerPool(MaxInt) err = %v, want ErrTooManyWorkers", err)
	}
}

// BenchmarkWorkerPoolThroughput benchmarks worker pool throughput
func BenchmarkWorkerPoolThroughput(b *testing.B) {
	pool, _ := NewWorkerPool(10)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Submit(func() {
			// Minimal work
		})
	}

	pool.Close()
}

// BenchmarkWorkerPoolWithWork benchmarks with actual work
func BenchmarkWorkerPoolWithWork(b *testing.B) {
	pool, _ := NewWorkerPool(10)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Submit(func() {
			// Simulate some work
			sum := 0
			for j := 0; j < 100; j++ {
				sum += j
			}
		})
	}

	pool.Close()
}
