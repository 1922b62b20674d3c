package logger

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	golocalv1 "github.com/caiflower/tiny-httpd/pkg/golocal/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerStdOut(t *testing.T) {
	logger := newLoggerHandler(&Config{
		Level:       TraceLevel,
		EnableTrace: "True",
		EnableColor: "True",
	})
	group := sync.WaitGroup{}

	for i := 1; i <= 10; i++ {
		group.Add(1)
		go func(i int) {
			defer group.Done()
			golocalv1.PutTraceID("lt-" + strconv.Itoa(i))
			defer golocalv1.Clean()
			logger.Trace("trace" + strconv.Itoa(i))
			logger.Debug("debug" + strconv.Itoa(i))
			logger.Info("info" + strconv.Itoa(i))
			logger.Warn("warn" + strconv.Itoa(i))
			logger.Error("error" + strconv.Itoa(i))
			logger.Fatal("fatal" + strconv.Itoa(i))
		}(i)
	}

	group.Wait()
	logger.Close()
}

func TestLoggerFile(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(&Config{
		Level:    InfoLevel,
		Path:     dir,
		FileName: "test.log",
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		golocalv1.PutTraceID("conn-1")
		defer golocalv1.Clean()
		logger.Debug("filtered %d", 1)
		logger.Info("accepted new connection from %s", "127.0.0.1:5000")
		logger.Error("read failed: %v", "EOF")
	}()
	<-done
	logger.Close()

	content, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, string(content), "[INFO] [conn-1] log_test.go:")
	assert.Contains(t, string(content), "accepted new connection from 127.0.0.1:5000")
	assert.Contains(t, string(content), "[ERROR] [conn-1]")
	assert.NotContains(t, string(content), "filtered")
}

func TestLogAfterClose(t *testing.T) {
	logger := NewLogger(&Config{})
	logger.Close()
	logger.Close()

	assert.NotPanics(t, func() {
		logger.Info("dropped")
	})
}

type countingStringer struct {
	calls *int32
}

func (c countingStringer) String() string {
	atomic.AddInt32(c.calls, 1)
	return "formatted"
}

func TestFilteredLevelSkipsFormatting(t *testing.T) {
	logger := NewLogger(&Config{Level: InfoLevel, Path: t.TempDir()})
	var calls int32
	logger.Debug("dump %s", countingStringer{calls: &calls})
	logger.Trace("dump %s", countingStringer{calls: &calls})
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	logger.Info("dump %s", countingStringer{calls: &calls})
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	logger.Close()
}
