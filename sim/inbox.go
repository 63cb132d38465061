package sim

import "sync"

// Inbox holds at most one pending program. A newer Put replaces an older one
// that has not been taken yet.
type Inbox struct {
	mu      sync.Mutex
	src     string
	pending bool
}

func (in *Inbox) Put(src string) {
	in.mu.Lock()
	in.src, in.pending = src, true
	in.mu.Unlock()
}

func (in *Inbox) Take() (string, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.pending {
		return "", false
	}
	src := in.src
	in.src, in.pending = "", false
	return src, true
}
