package bot

import (
	"sync"

	"holidaze/internal/booking"
	"holidaze/internal/model"
	"holidaze/internal/venueapi"
)

type dialogStep string

const (
	stepNone dialogStep = "none"

	stepLoginEmail    dialogStep = "login_email"
	stepLoginPassword dialogStep = "login_password"

	stepRegisterName     dialogStep = "register_name"
	stepRegisterEmail    dialogStep = "register_email"
	stepRegisterPassword dialogStep = "register_password"
	stepRegisterManager  dialogStep = "register_manager"

	stepSearch dialogStep = "search"

	stepBookingGuests dialogStep = "booking_guests"

	stepProfileBio    dialogStep = "profile_bio"
	stepProfileAvatar dialogStep = "profile_avatar"

	stepVenueName        dialogStep = "venue_name"
	stepVenueDescription dialogStep = "venue_description"
	stepVenuePrice       dialogStep = "venue_price"
	stepVenueMaxGuests   dialogStep = "venue_max_guests"
	stepVenueImage       dialogStep = "venue_image"
	stepVenueCity        dialogStep = "venue_city"
	stepVenueConfirm     dialogStep = "venue_confirm"
)

// venueDraft is the venue form being filled in. EditID is empty when creating.
type venueDraft struct {
	EditID string
	Input  venueapi.VenueInput
}

type userState struct {
	Step dialogStep

	Register venueapi.RegisterRequest
	Email    string

	Query string
	Page  int

	// MyBookings is the last listed page of the user's own bookings.
	MyBookings  []model.Booking
	EditBooking string

	Venue venueDraft

	// View is the venue page the user is looking at, if any.
	View *booking.VenueView
	// CalendarMsgID is the message that carries the calendar keyboard.
	CalendarMsgID int
}

type stateStore struct {
	mu sync.Mutex
	m  map[int64]*userState
}

func newStateStore() *stateStore {
	return &stateStore{m: make(map[int64]*userState)}
}

func (s *stateStore) get(userID int64) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.m[userID]
	if st == nil {
		st = &userState{Step: stepNone}
		s.m[userID] = st
	}
	return st
}

// resetDialog ends any text dialog but keeps the open venue page.
func (s *stateStore) resetDialog(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.m[userID]; st != nil {
		st.Step = stepNone
		st.Register = venueapi.RegisterRequest{}
		st.Email = ""
		st.EditBooking = ""
		st.Venue = venueDraft{}
	}
}

func (s *stateStore) reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}
