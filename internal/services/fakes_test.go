package services

import (
	"context"
	"sync"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/ports"
)

type layer struct {
	marker bool
	at     domain.Coordinate
	path   []domain.Coordinate
	style  ports.PolylineStyle
	popup  string
}

type fakeCanvas struct {
	mu      sync.Mutex
	layers  map[string]*layer
	order   []string
	center  domain.Coordinate
	zoom    int
	removed int
}

func newFakeCanvas() *fakeCanvas {
	return &fakeCanvas{layers: map[string]*layer{}}
}

func (c *fakeCanvas) AddMarker(id string, at domain.Coordinate, popup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layers[id] = &layer{marker: true, at: at, popup: popup}
	c.order = append(c.order, id)
}

func (c *fakeCanvas) AddPolyline(id string, path []domain.Coordinate, style ports.PolylineStyle, popup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layers[id] = &layer{path: path, style: style, popup: popup}
	c.order = append(c.order, id)
}

func (c *fakeCanvas) SetPolylineStyle(id string, style ports.PolylineStyle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.layers[id]; ok {
		l.style = style
	}
}

func (c *fakeCanvas) SetPopup(id string, popup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.layers[id]; ok {
		l.popup = popup
	}
}

func (c *fakeCanvas) RemoveLayer(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.layers, id)
	c.removed++
}

func (c *fakeCanvas) SetView(center domain.Coordinate, zoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.center, c.zoom = center, zoom
}

func (c *fakeCanvas) get(id string) (layer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.layers[id]
	if !ok {
		return layer{}, false
	}
	return *l, true
}

func (c *fakeCanvas) polylines() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.layers {
		if !l.marker {
			n++
		}
	}
	return n
}

func (c *fakeCanvas) markers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.layers {
		if l.marker {
			n++
		}
	}
	return n
}

type fakeView struct {
	mu          sync.Mutex
	fields      map[domain.Field]string
	suggestions map[domain.Field][]domain.AddressSuggestion
	visible     map[domain.Field]bool
	fares       map[string]string
	fareWrites  []string
}

func newFakeView() *fakeView {
	return &fakeView{
		fields:      map[domain.Field]string{},
		suggestions: map[domain.Field][]domain.AddressSuggestion{},
		visible:     map[domain.Field]bool{},
		fares:       map[string]string{},
	}
}

func (v *fakeView) SetFieldText(field domain.Field, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fields[field] = text
}

func (v *fakeView) ShowSuggestions(field domain.Field, s []domain.AddressSuggestion) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.suggestions[field] = s
	v.visible[field] = true
}

func (v *fakeView) HideSuggestions(field domain.Field) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible[field] = false
}

func (v *fakeView) SetFare(provider string, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fares[provider] = text
	v.fareWrites = append(v.fareWrites, provider+"="+text)
}

func (v *fakeView) fare(provider string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fares[provider]
}

func (v *fakeView) field(f domain.Field) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fields[f]
}

func (v *fakeView) shown(f domain.Field) ([]domain.AddressSuggestion, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.suggestions[f], v.visible[f]
}

// searchCall is one in-flight Search; the test answers it through reply.
type searchCall struct {
	ctx   context.Context
	query string
	limit int
	reply chan searchReply
}

type searchReply struct {
	results []domain.AddressSuggestion
	err     error
}

type reverseCall struct {
	at    domain.Coordinate
	reply chan reverseReply
}

type reverseReply struct {
	name string
	err  error
}

// fakeGeocoder hands every call to the test and blocks until it is answered.
type fakeGeocoder struct {
	searches chan *searchCall
	reverses chan *reverseCall
}

func newFakeGeocoder() *fakeGeocoder {
	return &fakeGeocoder{
		searches: make(chan *searchCall, 16),
		reverses: make(chan *reverseCall, 16),
	}
}

func (g *fakeGeocoder) Search(ctx context.Context, query string, limit int) ([]domain.AddressSuggestion, error) {
	call := &searchCall{ctx: ctx, query: query, limit: limit, reply: make(chan searchReply, 1)}
	g.searches <- call
	select {
	case r := <-call.reply:
		if ctx.Err() != nil {
			return nil, domain.ErrCancelled
		}
		return r.results, r.err
	case <-ctx.Done():
		return nil, domain.ErrCancelled
	}
}

func (g *fakeGeocoder) Reverse(ctx context.Context, at domain.Coordinate) (string, error) {
	call := &reverseCall{at: at, reply: make(chan reverseReply, 1)}
	g.reverses <- call
	r := <-call.reply
	return r.name, r.err
}

type routeCall struct {
	origin, destination domain.Coordinate
	alternatives        bool
	reply               chan routeReply
}

type routeReply struct {
	routes []domain.RouteCandidate
	err    error
}

type fakeRouter struct {
	calls chan *routeCall
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{calls: make(chan *routeCall, 16)}
}

func (r *fakeRouter) Routes(_ context.Context, origin, destination domain.Coordinate, alternatives bool) ([]domain.RouteCandidate, error) {
	call := &routeCall{origin: origin, destination: destination, alternatives: alternatives, reply: make(chan routeReply, 1)}
	r.calls <- call
	rep := <-call.reply
	return rep.routes, rep.err
}

type fareCall struct {
	origin, destination domain.Coordinate
	out                 chan domain.FareResult
}

// fakeFares lets the test push provider results one at a time and close the stream.
type fakeFares struct {
	names []string
	calls chan *fareCall
}

func newFakeFares(names ...string) *fakeFares {
	return &fakeFares{names: names, calls: make(chan *fareCall, 16)}
}

func (f *fakeFares) Providers() []string { return f.names }

func (f *fakeFares) Stream(_ context.Context, origin, destination domain.Coordinate) <-chan domain.FareResult {
	call := &fareCall{origin: origin, destination: destination, out: make(chan domain.FareResult, len(f.names))}
	f.calls <- call
	return call.out
}

type recordingSink struct {
	mu     sync.Mutex
	quotes []domain.Quote
}

func (s *recordingSink) PublishQuote(_ context.Context, q domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append(s.quotes, q)
	return nil
}

func (s *recordingSink) published() []domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Quote(nil), s.quotes...)
}
