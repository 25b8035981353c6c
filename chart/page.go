package chart

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrCanvasNotFound is returned when a chart targets a canvas the
	// document does not declare.
	ErrCanvasNotFound = errors.New("canvas not found")

	// ErrCanvasInUse is returned when a chart targets a canvas that already
	// holds a chart.
	ErrCanvasInUse = errors.New("canvas is already in use")

	// ErrNoDocument is returned by a [Builder] created without a document.
	ErrNoDocument = errors.New("builder has no document")
)

// Document is a set of canvases that charts can be mounted on.
type Document interface {
	// Mount binds cfg to the canvas named canvasID and returns the bound chart.
	Mount(canvasID string, cfg Config) (*Chart, error)
}

// Page is an in-memory [Document].
//
// Canvases are declared up front (or with [Page.Declare]); mounting on an
// undeclared canvas fails with [ErrCanvasNotFound], and mounting twice on
// the same canvas fails with [ErrCanvasInUse] until it is released.
// Page is safe for concurrent use.
type Page struct {
	mu       sync.Mutex
	canvases []string
	declared map[string]struct{}
	mounted  map[string]*Chart
	order    []string
}

// NewPage creates a page declaring the given canvases.
func NewPage(canvasIDs ...string) *Page {
	p := &Page{
		declared: make(map[string]struct{}, len(canvasIDs)),
		mounted:  make(map[string]*Chart, len(canvasIDs)),
	}
	for _, id := range canvasIDs {
		p.declare(id)
	}
	return p
}

// Declare adds a canvas to the page. Declaring an existing canvas is a no-op.
func (p *Page) Declare(canvasID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.declare(canvasID)
}

func (p *Page) declare(canvasID string) {
	if _, ok := p.declared[canvasID]; ok {
		return
	}
	p.declared[canvasID] = struct{}{}
	p.canvases = append(p.canvases, canvasID)
}

// Mount implements [Document].
func (p *Page) Mount(canvasID string, cfg Config) (*Chart, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.declared[canvasID]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrCanvasNotFound, canvasID)
	}
	if _, ok := p.mounted[canvasID]; ok {
		return nil, fmt.Errorf("%w: %q", ErrCanvasInUse, canvasID)
	}

	c := &Chart{CanvasID: canvasID, Config: cfg}
	p.mounted[canvasID] = c
	p.order = append(p.order, canvasID)
	return c, nil
}

// Release detaches the chart mounted on canvasID, if any.
func (p *Page) Release(canvasID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.mounted[canvasID]; !ok {
		return
	}
	delete(p.mounted, canvasID)
	for i, id := range p.order {
		if id == canvasID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Chart returns the chart mounted on canvasID.
func (p *Page) Chart(canvasID string) (*Chart, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.mounted[canvasID]
	return c, ok
}

// Charts returns the mounted charts in mount order.
func (p *Page) Charts() []*Chart {
	p.mu.Lock()
	defer p.mu.Unlock()

	charts := make([]*Chart, 0, len(p.order))
	for _, id := range p.order {
		charts = append(charts, p.mounted[id])
	}
	return charts
}

// Canvases returns the declared canvas ids in declaration order.
func (p *Page) Canvases() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.canvases...)
}
