//go:build go1.4
// +build go1.4

package v1

import (
	"sync"

	"github.com/modern-go/gls"
)

const (
	RequestID = "X-Request-ID"
)

// goroutine id -> *sync.Map
var localMap sync.Map

func getGoID() int64 {
	return gls.GoID()
}

func loadMap(goID int64) *sync.Map {
	if value, ok := localMap.Load(goID); ok {
		return value.(*sync.Map)
	}
	return nil
}

func loadOrCreateMap(goID int64) *sync.Map {
	value, _ := localMap.LoadOrStore(goID, &sync.Map{})
	return value.(*sync.Map)
}

// PutTraceID binds a trace id to the calling goroutine. Callers must Clean before the goroutine exits.
func PutTraceID(value string) {
	loadOrCreateMap(getGoID()).Store(RequestID, value)
}

func GetTraceID() string {
	if v := Get(RequestID); v != nil {
		return v.(string)
	}
	return ""
}

func Put(key string, value interface{}) {
	loadOrCreateMap(getGoID()).Store(key, value)
}

// Get does not allocate a map for goroutines that never called Put.
func Get(key string) interface{} {
	m := loadMap(getGoID())
	if m == nil {
		return nil
	}
	if v, ok := m.Load(key); ok {
		return v
	}
	return nil
}

func Clean() {
	localMap.Delete(getGoID())
}
