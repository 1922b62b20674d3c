package e

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnError(t *testing.T) {
	assert.NotPanics(t, func() {
		defer OnError("test")
		panic("boom")
	})
}

func TestOnErrorFunc(t *testing.T) {
	var recovered interface{}
	func() {
		defer OnErrorFunc("test", func(r interface{}) {
			recovered = r
		})
		panic("boom")
	}()
	assert.Equal(t, "boom", recovered)

	called := false
	func() {
		defer OnErrorFunc("test", func(r interface{}) {
			called = true
		})
	}()
	assert.False(t, called)
}
