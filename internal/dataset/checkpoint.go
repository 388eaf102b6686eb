package dataset

import (
	"log/slog"
	"sync"
)

// Checkpointer serializes mutations of a table shared by concurrent
// workers and saves it every n updates. It is the table's only writer.
type Checkpointer struct {
	mu      sync.Mutex
	table   *Table
	path    string
	every   int
	pending int
}

// NewCheckpointer saves t to path after every n updates (n < 1 means 1).
func NewCheckpointer(t *Table, path string, n int) *Checkpointer {
	if n < 1 {
		n = 1
	}
	return &Checkpointer{table: t, path: path, every: n}
}

// Update applies fn to the table and saves when the cadence is reached.
func (c *Checkpointer) Update(fn func(t *Table)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(c.table)
	c.pending++
	if c.pending < c.every {
		return nil
	}
	return c.saveLocked()
}

// Flush saves any pending updates.
func (c *Checkpointer) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Checkpointer) saveLocked() error {
	if err := c.table.Save(c.path); err != nil {
		return err
	}
	slog.Debug("saved checkpoint", "path", c.path, "updates", c.pending)
	c.pending = 0
	return nil
}
