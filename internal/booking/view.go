package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"holidaze/internal/availability"
	"holidaze/internal/metrics"
	"holidaze/internal/model"
	"holidaze/internal/session"
	"holidaze/internal/venueapi"
)

var (
	// ErrStaleResponse is returned when a venue load finished after a newer
	// load was started; its result is discarded.
	ErrStaleResponse = errors.New("stale venue response")
	ErrNoVenue       = errors.New("no venue loaded")
)

// Loader fetches a venue with its bookings.
type Loader interface {
	GetVenue(ctx context.Context, id string, vq venueapi.VenueQuery) (*model.Venue, error)
}

// VenueView is one user's session on one venue page: the loaded venue, the
// displayed month, the range selector and the guest count.
type VenueView struct {
	loader    Loader
	submitter *Submitter

	mu        sync.Mutex
	gen       uint64
	pendingID string

	venue    *model.Venue
	month    time.Time
	grid     availability.Grid
	selector *availability.Selector
	guests   int
}

// NewVenueView returns an empty view; call Load before anything else.
func NewVenueView(loader Loader, submitter *Submitter) *VenueView {
	return &VenueView{
		loader:    loader,
		submitter: submitter,
		selector:  availability.NewSelector(nil),
		guests:    1,
	}
}

// Load fetches venue id and shows the month of ref. A load that completes
// after a newer Load started returns ErrStaleResponse and changes nothing.
func (v *VenueView) Load(ctx context.Context, id string, ref time.Time) error {
	return v.load(ctx, id, ref, false)
}

// Refresh re-fetches the current venue bypassing any cache and rebuilds the
// grid for the displayed month.
func (v *VenueView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.venue == nil {
		v.mu.Unlock()
		return ErrNoVenue
	}
	id, month := v.venue.ID, v.month
	v.mu.Unlock()

	return v.load(ctx, id, month, true)
}

func (v *VenueView) load(ctx context.Context, id string, ref time.Time, refresh bool) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.pendingID = id
	v.mu.Unlock()

	venue, err := v.loader.GetVenue(ctx, id, venueapi.VenueQuery{Bookings: true, Owner: true, NoCache: refresh})

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen || v.pendingID != id {
		return ErrStaleResponse
	}
	if err != nil {
		return err
	}
	if venue == nil {
		return ErrNoVenue
	}

	sameVenue := v.venue != nil && v.venue.ID == venue.ID
	v.venue = venue
	v.month = firstOfMonth(ref)
	v.grid = availability.BuildMonth(venue.Bookings, v.month)
	if sameVenue {
		v.selector.SetChecker(availability.Bookings(venue.Bookings))
	} else {
		v.selector = availability.NewSelector(availability.Bookings(venue.Bookings))
		v.guests = 1
	}
	return nil
}

// ShowMonth moves the displayed month by delta months. The selector state is kept.
func (v *VenueView) ShowMonth(delta int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.venue == nil {
		return ErrNoVenue
	}
	v.month = v.month.AddDate(0, delta, 0)
	v.grid = availability.BuildMonth(v.venue.Bookings, v.month)
	return nil
}

// Click forwards a calendar tap to the selector.
func (v *VenueView) Click(d model.Day) (committed bool, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.venue == nil {
		return false, ErrNoVenue
	}
	committed, err = v.selector.Click(d)
	if err != nil {
		metrics.IncSelectionRejected(availability.Reason(err))
	}
	return committed, err
}

// ClearSelection drops the provisional start and the committed range.
func (v *VenueView) ClearSelection() {
	v.mu.Lock()
	v.selector.Reset()
	v.mu.Unlock()
}

// SetGuests stores the guest count as given; Submit validates it.
func (v *VenueView) SetGuests(n int) {
	v.mu.Lock()
	v.guests = n
	v.mu.Unlock()
}

// AddGuests changes the guest count by delta, keeping it within 1 and the
// venue capacity when known, and returns the new count.
func (v *VenueView) AddGuests(delta int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := v.guests + delta
	if v.venue != nil && v.venue.MaxGuests > 0 && n > v.venue.MaxGuests {
		n = v.venue.MaxGuests
	}
	if n < 1 {
		n = 1
	}
	v.guests = n
	return n
}

// Submit books the committed selection. On success the selection is cleared
// and guests reset to 1; the caller is expected to Refresh afterwards to pick
// up the authoritative booking list. On a remote rejection the selection is
// kept so the user can retry.
func (v *VenueView) Submit(ctx context.Context, sess session.Session) (*model.Booking, error) {
	v.mu.Lock()
	if v.venue == nil {
		v.mu.Unlock()
		return nil, ErrNoVenue
	}
	req := Request{
		VenueID:   v.venue.ID,
		Selection: v.selector.Selection(),
		Guests:    v.guests,
		MaxGuests: v.venue.MaxGuests,
	}
	v.mu.Unlock()

	booking, err := v.submitter.Submit(ctx, sess, req)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) && verr.Field == "dates" {
			// A dangling provisional start is dropped so the next tap starts a new pair.
			v.selector.Reset()
		}
		return nil, err
	}
	if v.venue != nil && v.venue.ID == req.VenueID {
		v.selector.Reset()
		v.guests = 1
	}
	return booking, nil
}

// Snapshot is a consistent copy of the view state for rendering.
type Snapshot struct {
	Venue     model.Venue
	Grid      availability.Grid
	State     availability.State
	Start     model.Day
	Selection availability.Selection
	Guests    int
}

// Snapshot returns the current state, or false when no venue is loaded.
func (v *VenueView) Snapshot() (Snapshot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.venue == nil {
		return Snapshot{}, false
	}
	return Snapshot{
		Venue:     *v.venue,
		Grid:      v.grid,
		State:     v.selector.State(),
		Start:     v.selector.Start(),
		Selection: v.selector.Selection(),
		Guests:    v.guests,
	}, true
}

// VenueID returns the loaded venue ID or "".
func (v *VenueView) VenueID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.venue == nil {
		return ""
	}
	return v.venue.ID
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
