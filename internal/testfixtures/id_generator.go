package testfixtures

import (
	"strconv"
	"sync"
)

// IDGenerator hands out numeric string identifiers, the form the plugin uses
// for every record.
type IDGenerator struct {
	mu   sync.Mutex
	next int
}

// NewIDGenerator returns a generator whose first id is start. Values below
// one start at one.
func NewIDGenerator(start int) *IDGenerator {
	if start < 1 {
		start = 1
	}
	return &IDGenerator{next: start}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next
	g.next++
	return strconv.Itoa(id)
}

// NextFunc returns Next as a function. A nil generator yields empty ids.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Reset makes start the next id handed out.
func (g *IDGenerator) Reset(start int) {
	g.mu.Lock()
	if start < 1 {
		start = 1
	}
	g.next = start
	g.mu.Unlock()
}
