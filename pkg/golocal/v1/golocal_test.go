package v1

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceIDIsGoroutineLocal(t *testing.T) {
	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer Clean()

			traceID := "trace-" + strconv.Itoa(i)
			PutTraceID(traceID)
			assert.Equal(t, traceID, GetTraceID())
		}(i)
	}
	wg.Wait()
}

func TestGetWithoutPut(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.Equal(t, "", GetTraceID())
		assert.Nil(t, Get("missing"))
	}()
	<-done
}

func TestClean(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		Put("k", 1)
		assert.Equal(t, 1, Get("k"))
		Clean()
		assert.Nil(t, Get("k"))
	}()
	<-done
}
