package store

import (
	"path/filepath"
	"sync"
)

// Every SQLiteStore of this process counts against its database file until
// it is closed. SQLite grants BEGIN EXCLUSIVE while other connections sit
// idle, so the file lock alone cannot tell whether a file is still in use.
var handles = struct {
	sync.Mutex
	open map[string]int
}{open: make(map[string]int)}

func handleKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func acquire(path string) {
	key := handleKey(path)

	handles.Lock()
	defer handles.Unlock()
	handles.open[key]++
}

func release(path string) {
	key := handleKey(path)

	handles.Lock()
	defer handles.Unlock()
	if handles.open[key] <= 1 {
		delete(handles.open, key)
		return
	}
	handles.open[key]--
}

// InUse reports whether a store of this process still holds path open.
func InUse(path string) bool {
	key := handleKey(path)

	handles.Lock()
	defer handles.Unlock()
	return handles.open[key] > 0
}
