package locker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRW_Asserts(t *testing.T) {
	var l RW

	require.Panics(t, func() { l.AssertRead("Scalar") })
	require.Panics(t, func() { l.AssertWrite("PutScalar") })

	l.BeginRead()
	assert.NotPanics(t, func() { l.AssertRead("Scalar") })
	assert.Panics(t, func() { l.AssertWrite("PutScalar") })
	l.EndRead()

	l.BeginWrite()
	// Write holders may also read.
	assert.NotPanics(t, func() { l.AssertRead("Scalar") })
	assert.NotPanics(t, func() { l.AssertWrite("PutScalar") })
	l.EndWrite()

	require.Panics(t, func() { l.AssertRead("Scalar") })
}

func TestRW_ConcurrentReaders(t *testing.T) {
	var l RW
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.BeginRead()
			l.AssertRead("Vector")
			l.EndRead()
		}()
	}
	wg.Wait()
	assert.Panics(t, func() { l.AssertRead("Vector") })
}

func TestRW_WriterExcludesReaders(t *testing.T) {
	var l RW
	l.BeginWrite()

	acquired := make(chan struct{})
	go func() {
		l.BeginRead()
		close(acquired)
		l.EndRead()
	}()

	select {
	case <-acquired:
		t.Fatal("reader acquired the lock while a writer held it")
	default:
	}

	l.EndWrite()
	<-acquired
}
