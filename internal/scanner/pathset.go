package scanner

import "sync"

// pathSet is a scan-scoped set with an atomic check-and-insert.
type pathSet struct {
	mutex sync.Mutex
	paths map[string]struct{}
}

func newPathSet() *pathSet {
	return &pathSet{paths: make(map[string]struct{})}
}

// Add inserts path and reports whether it was absent.
func (set *pathSet) Add(path string) bool {
	set.mutex.Lock()
	defer set.mutex.Unlock()
	if _, exists := set.paths[path]; exists {
		return false
	}
	set.paths[path] = struct{}{}
	return true
}
