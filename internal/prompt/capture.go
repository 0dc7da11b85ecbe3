package prompt

import "sync"

// Capture tracks which dialogs hold the keyboard. While any owner is registered
// the host screen must not interpret keys as its own shortcuts.
type Capture struct {
	mu     sync.Mutex
	owners map[string]int
}

func NewCapture() *Capture {
	return &Capture{owners: make(map[string]int)}
}

// Acquire registers owner and returns the matching release. Release is idempotent.
func (c *Capture) Acquire(owner string) func() {
	c.mu.Lock()
	c.owners[owner]++
	c.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			c.owners[owner]--
			if c.owners[owner] <= 0 {
				delete(c.owners, owner)
			}
		})
	}
}

// Captured reports whether any dialog currently owns the keyboard.
func (c *Capture) Captured() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.owners) > 0
}
