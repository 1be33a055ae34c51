package deadlock

import "sync"

// Pair has two methods that acquire mu1/mu2 in opposite order. A reaches it
// on the analyzer's stand-in UI thread; B only runs once launched in its own
// goroutine, which is what makes the two methods eligible to race at all:
// any thread other than the UI thread collapses here to "reachable from a
// goroutine launch".
type Pair struct {
	mu1 sync.Mutex
	mu2 sync.Mutex
}

func (p *Pair) A() {
	p.mu1.Lock() // want `Potential deadlock between .*\.A and .*\.B\.`
	p.mu2.Lock()
	p.mu2.Unlock()
	p.mu1.Unlock()
}

func (p *Pair) B() {
	p.mu2.Lock()
	p.mu1.Lock()
	p.mu1.Unlock()
	p.mu2.Unlock()
}

func launch(p *Pair) {
	go p.B()
}
