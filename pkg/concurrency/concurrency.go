package concurrency

const (
	// DefaultMax default max
	DefaultMax = 64
)

// GoLimit bounds the number of goroutines working at once
type GoLimit struct {
	ch chan struct{}
}

// NewGoLimit new go limit
func NewGoLimit(max int) *GoLimit {
	return &GoLimit{
		ch: make(chan struct{}, max),
	}
}

// Add acquire a slot, blocking while max are in flight
func (g *GoLimit) Add() {
	g.ch <- struct{}{}
}

// Done release the slot
func (g *GoLimit) Done() {
	<-g.ch
}
