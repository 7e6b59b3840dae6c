package parser

import "sync"

// Guarded serializes the access to a single parser, so it can be shared between
// goroutines. Callbacks run with the lock held, so they must not call back into the
// Guarded, use the *Parser they were given instead.
type Guarded struct {
	mu sync.Mutex
	p  *Parser
}

func Guard(p *Parser) *Guarded {
	return &Guarded{p: p}
}

func (g *Guarded) Execute(data []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.p.Execute(data)
}

func (g *Guarded) Finish() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.p.Finish()
}

func (g *Guarded) Init(mode Mode) {
	g.mu.Lock()
	g.p.Init(mode)
	g.mu.Unlock()
}

func (g *Guarded) Pause() {
	g.mu.Lock()
	g.p.Pause()
	g.mu.Unlock()
}

func (g *Guarded) Resume() {
	g.mu.Lock()
	g.p.Resume()
	g.mu.Unlock()
}

// Do runs fn with exclusive access to the parser, e.g. to read several accessors
// consistently.
func (g *Guarded) Do(fn func(p *Parser)) {
	g.mu.Lock()
	defer g.mu.Unlock()

	fn(g.p)
}
