package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/platform/obs"
	"github.com/NLlemain/ride-comparing/internal/ports"
	"go.uber.org/zap"
)

const (
	// Inputs shorter than this never reach the geocoder.
	MinQueryLength  = 3
	SuggestionLimit = 5
	FocusZoom       = 15
	InitialZoom     = 13
)

// InitialCenter is where a fresh session's map opens before any location is known.
var InitialCenter = domain.Coordinate{Lat: 52.3676, Lon: 4.9041}

// ErrUnknownSuggestion is returned when a suggestion index is not in the field's current list.
var ErrUnknownSuggestion = errors.New("unknown suggestion")

// Dependencies are the collaborators of a SessionCoordinator.
type Dependencies struct {
	Geocoder ports.Geocoder
	Router   ports.Router
	Fares    ports.FareEstimator
	Quotes   ports.QuoteSink
	View     ports.View
	Canvas   ports.Canvas
	Logger   *zap.Logger
}

type pendingSearch struct {
	seq    uint64
	cancel context.CancelFunc
}

// SessionCoordinator runs one browser session: it turns user events into
// geocoding, routing and fare lookups and writes the outcome to the session's
// View and Canvas.
//
// Methods block until their lookups finish and are safe to call from
// concurrent goroutines. Display writes happen only while mu is held.
// The Begin variants do the ordering work at once and return the blocking
// remainder, so a caller that receives events in order can call them in that
// order and still let the lookups overlap.
//
// Destination ordering: every destination-changing operation takes a sequence
// number when issued and commits it when it applies. Completions carrying an
// older number than the last committed one are dropped, so the last issued
// operation that succeeds wins. Route and fare lookups are never cancelled;
// they only write while their destination is still the committed one.
type SessionCoordinator struct {
	id       string
	geocoder ports.Geocoder
	router   ports.Router
	fares    ports.FareEstimator
	quotes   ports.QuoteSink
	view     ports.View
	overlays *OverlayManager
	logger   *zap.Logger
	now      func() time.Time

	mu           sync.Mutex
	userLocation *domain.Coordinate
	dropoff      *domain.Coordinate
	pending      map[domain.Field]*pendingSearch
	suggestions  map[domain.Field][]domain.AddressSuggestion
	searchSeq    uint64
	issued       uint64
	committed    uint64
}

func NewSessionCoordinator(id string, deps Dependencies) *SessionCoordinator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionCoordinator{
		id:          id,
		geocoder:    deps.Geocoder,
		router:      deps.Router,
		fares:       deps.Fares,
		quotes:      deps.Quotes,
		view:        deps.View,
		overlays:    NewOverlayManager(deps.Canvas),
		logger:      logger.With(zap.String("session_id", id)),
		now:         time.Now,
		pending:     make(map[domain.Field]*pendingSearch),
		suggestions: make(map[domain.Field][]domain.AddressSuggestion),
	}
}

func (c *SessionCoordinator) ID() string { return c.id }

func (c *SessionCoordinator) Overlays() *OverlayManager { return c.overlays }

func (c *SessionCoordinator) UserLocation() (domain.Coordinate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userLocation == nil {
		return domain.Coordinate{}, false
	}
	return *c.userLocation, true
}

func (c *SessionCoordinator) Dropoff() (domain.Coordinate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dropoff == nil {
		return domain.Coordinate{}, false
	}
	return *c.dropoff, true
}

// Start opens the map at the initial view.
func (c *SessionCoordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlays.Recenter(InitialCenter, InitialZoom)
}

// Close cancels every pending suggestion search.
func (c *SessionCoordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for field, p := range c.pending {
		p.cancel()
		delete(c.pending, field)
	}
}

// SetUserLocation records a device geolocation fix.
func (c *SessionCoordinator) SetUserLocation(at domain.Coordinate) {
	if !at.Valid() {
		c.logger.Warn("ignoring invalid user location", zap.Stringer("at", at))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.userLocation = &at
	c.overlays.SetUserMarker(at)
	c.overlays.Recenter(at, FocusZoom)
}

// HandleMapClick reverse-geocodes the clicked point and makes it the dropoff.
// A point without an address leaves the session unchanged.
func (c *SessionCoordinator) HandleMapClick(ctx context.Context, at domain.Coordinate) {
	c.BeginMapClick(ctx, at)()
}

// BeginMapClick takes the click's place in the destination order and returns
// the blocking remainder of HandleMapClick.
func (c *SessionCoordinator) BeginMapClick(ctx context.Context, at domain.Coordinate) func() {
	ctx = obs.WithSessionID(ctx, c.id)
	seq := c.issue()

	return func() {
		address, err := c.geocoder.Reverse(ctx, at)
		if err != nil {
			c.logFailure("reverse geocode failed", err, zap.Stringer("at", at))
			return
		}

		c.mu.Lock()
		if !c.commitLocked(seq) {
			c.mu.Unlock()
			return
		}
		c.view.SetFieldText(domain.FieldEnd, address)
		c.resetLocked()
		c.placeDropoffLocked(at)
		c.mu.Unlock()

		c.lookupRoute(ctx, seq, at)
	}
}

// HandleAddressInput drives the live suggestion list of a field.
// Only the latest search issued for a field may write its results.
func (c *SessionCoordinator) HandleAddressInput(ctx context.Context, field domain.Field, text string) {
	if run := c.BeginAddressInput(ctx, field, text); run != nil {
		run()
	}
}

// BeginAddressInput cancels the field's pending search and, for queries long
// enough to search, returns the search itself. The returned func may run
// concurrently with later inputs; a newer input cancels it.
func (c *SessionCoordinator) BeginAddressInput(ctx context.Context, field domain.Field, text string) func() {
	if !field.Valid() {
		return nil
	}
	ctx = obs.WithSessionID(ctx, c.id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if p := c.pending[field]; p != nil {
		p.cancel()
		delete(c.pending, field)
	}

	if utf8.RuneCountInString(text) < MinQueryLength {
		c.suggestions[field] = nil
		c.view.HideSuggestions(field)
		return nil
	}

	c.searchSeq++
	seq := c.searchSeq
	searchCtx, cancel := context.WithCancel(ctx)
	c.pending[field] = &pendingSearch{seq: seq, cancel: cancel}

	return func() {
		results, err := c.geocoder.Search(searchCtx, text, SuggestionLimit)

		c.mu.Lock()
		defer c.mu.Unlock()

		p := c.pending[field]
		if p == nil || p.seq != seq {
			cancel()
			return
		}
		delete(c.pending, field)
		cancel()

		if err != nil {
			c.logFailure("address search failed", err, zap.String("field", string(field)))
			return
		}

		if len(results) == 0 {
			c.suggestions[field] = nil
			c.view.HideSuggestions(field)
			return
		}

		c.suggestions[field] = results
		c.view.ShowSuggestions(field, results)
	}
}

// SelectSuggestionAt picks an entry of the field's current suggestion list.
func (c *SessionCoordinator) SelectSuggestionAt(ctx context.Context, field domain.Field, index int) error {
	run, err := c.BeginSelectSuggestionAt(ctx, field, index)
	if err != nil {
		return err
	}
	run()
	return nil
}

// BeginSelectSuggestionAt applies the pick and returns the route lookup it starts.
func (c *SessionCoordinator) BeginSelectSuggestionAt(ctx context.Context, field domain.Field, index int) (func(), error) {
	c.mu.Lock()
	list := c.suggestions[field]
	if index < 0 || index >= len(list) {
		c.mu.Unlock()
		return nil, fmt.Errorf("select %s suggestion %d: %w", field, index, ErrUnknownSuggestion)
	}
	s := list[index]
	c.mu.Unlock()

	return c.BeginSelectSuggestion(ctx, field, s), nil
}

// SelectSuggestion applies a chosen suggestion. A start pick moves the user
// location; an end pick becomes the dropoff. Both clear the current dropoff.
func (c *SessionCoordinator) SelectSuggestion(ctx context.Context, field domain.Field, s domain.AddressSuggestion) {
	c.BeginSelectSuggestion(ctx, field, s)()
}

// BeginSelectSuggestion applies the pick at once and returns the route lookup
// for an end pick. A pick involves no lookup before it applies, so it always
// commits.
func (c *SessionCoordinator) BeginSelectSuggestion(ctx context.Context, field domain.Field, s domain.AddressSuggestion) func() {
	ctx = obs.WithSessionID(ctx, c.id)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.issued++
	seq := c.issued
	c.committed = seq

	if p := c.pending[field]; p != nil {
		p.cancel()
		delete(c.pending, field)
	}
	c.suggestions[field] = nil
	c.view.SetFieldText(field, s.DisplayName)
	c.view.HideSuggestions(field)
	c.resetLocked()

	at := s.Coordinate
	if field == domain.FieldStart {
		c.userLocation = &at
		c.overlays.SetUserMarker(at)
		c.overlays.Recenter(at, FocusZoom)
		return func() {}
	}

	c.placeDropoffLocked(at)
	return func() { c.lookupRoute(ctx, seq, at) }
}

// SubmitDestinationText resolves free text to its best match and makes it the dropoff.
// No match has no visible effect.
func (c *SessionCoordinator) SubmitDestinationText(ctx context.Context, text string) {
	if run := c.BeginSubmitDestinationText(ctx, text); run != nil {
		run()
	}
}

// BeginSubmitDestinationText takes the submit's place in the destination order
// and returns the blocking lookup. Blank text returns nil.
func (c *SessionCoordinator) BeginSubmitDestinationText(ctx context.Context, text string) func() {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	ctx = obs.WithSessionID(ctx, c.id)
	seq := c.issue()

	return func() {
		results, err := c.geocoder.Search(ctx, text, 1)
		if err != nil {
			c.logFailure("destination search failed", err)
			return
		}
		if len(results) == 0 {
			c.logger.Debug("destination not found", zap.String("text", text))
			return
		}
		at := results[0].Coordinate

		c.mu.Lock()
		if !c.commitLocked(seq) {
			c.mu.Unlock()
			return
		}
		c.resetLocked()
		c.placeDropoffLocked(at)
		c.mu.Unlock()

		c.lookupRoute(ctx, seq, at)
	}
}

// SelectRoute promotes a rendered route to highlighted.
func (c *SessionCoordinator) SelectRoute(layerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays.Highlight(layerID)
}

// Reset clears the dropoff, its overlays and every fare text. The user location stays.
func (c *SessionCoordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.issued++
	c.committed = c.issued
	c.resetLocked()
}

func (c *SessionCoordinator) issue() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

func (c *SessionCoordinator) commitLocked(seq uint64) bool {
	if seq < c.committed {
		c.logger.Debug("superseded destination dropped", zap.Uint64("seq", seq), zap.Uint64("committed", c.committed))
		return false
	}
	c.committed = seq
	return true
}

func (c *SessionCoordinator) currentLocked(seq uint64) bool {
	return seq == c.committed
}

func (c *SessionCoordinator) resetLocked() {
	c.dropoff = nil
	c.overlays.ClearAll()
	for _, name := range c.fares.Providers() {
		c.view.SetFare(name, "")
	}
}

func (c *SessionCoordinator) placeDropoffLocked(at domain.Coordinate) {
	c.dropoff = &at
	c.overlays.SetDropoffMarker(at, "")
}

func (c *SessionCoordinator) lookupRoute(ctx context.Context, seq uint64, destination domain.Coordinate) {
	c.mu.Lock()
	if c.userLocation == nil {
		c.mu.Unlock()
		c.logger.Debug("route lookup skipped: user location unknown")
		return
	}
	origin := *c.userLocation
	c.mu.Unlock()

	routes, err := c.router.Routes(ctx, origin, destination, true)
	if err != nil {
		c.logFailure("route lookup failed", err,
			zap.Stringer("origin", origin),
			zap.Stringer("destination", destination),
		)
		return
	}
	if len(routes) == 0 {
		c.logger.Debug("no route found", zap.Stringer("origin", origin), zap.Stringer("destination", destination))
		return
	}

	c.mu.Lock()
	if !c.currentLocked(seq) {
		c.mu.Unlock()
		return
	}
	c.overlays.RenderRoutes(routes)
	c.overlays.SetDropoffPopup(routes[0].DropoffPopup())
	c.mu.Unlock()

	c.lookupFares(ctx, seq, origin, destination, routes[0])
}

func (c *SessionCoordinator) lookupFares(
	ctx context.Context,
	seq uint64,
	origin, destination domain.Coordinate,
	headline domain.RouteCandidate,
) {
	byProvider := make(map[string]domain.FareResult)

	for r := range c.fares.Stream(ctx, origin, destination) {
		if errors.Is(r.Err, domain.ErrCancelled) {
			continue
		}
		byProvider[r.Provider] = r

		c.mu.Lock()
		if c.currentLocked(seq) {
			c.view.SetFare(r.Provider, r.Display())
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	current := c.currentLocked(seq)
	c.mu.Unlock()
	if !current || ctx.Err() != nil || c.quotes == nil {
		return
	}

	fares := make([]domain.FareResult, 0, len(byProvider))
	for _, name := range c.fares.Providers() {
		if r, ok := byProvider[name]; ok {
			fares = append(fares, r)
		}
	}

	quote := domain.Quote{
		SessionID:       c.id,
		Origin:          origin,
		Dropoff:         destination,
		DistanceMeters:  headline.DistanceMeters,
		DurationSeconds: headline.DurationSeconds,
		Fares:           fares,
		QuotedAt:        c.now().UTC(),
	}
	if err := c.quotes.PublishQuote(ctx, quote); err != nil {
		c.logger.Warn("quote publish failed", zap.Error(err))
	}
}

// Cancellations are expected; everything else is worth a warning.
func (c *SessionCoordinator) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if errors.Is(err, domain.ErrCancelled) || errors.Is(err, domain.ErrNotFound) {
		c.logger.Debug(msg, fields...)
		return
	}
	c.logger.Warn(msg, fields...)
}
