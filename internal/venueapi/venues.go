package venueapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"holidaze/internal/model"
)

// ListOptions controls paging and sorting of list endpoints.
type ListOptions struct {
	Limit     int
	Page      int
	Sort      string
	SortOrder string // asc or desc
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	if o.SortOrder != "" {
		q.Set("sortOrder", o.SortOrder)
	}
	return q
}

// VenueQuery selects embedded relations of a single venue.
type VenueQuery struct {
	Bookings bool
	Owner    bool
	// NoCache forces a round-trip, used when the authoritative booking list is needed.
	NoCache bool
}

// VenueInput is the body of venue create and update calls.
type VenueInput struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Media       []model.Media  `json:"media,omitempty"`
	Price       float64        `json:"price"`
	MaxGuests   int            `json:"maxGuests"`
	Rating      float64        `json:"rating,omitempty"`
	Meta        model.Meta     `json:"meta"`
	Location    model.Location `json:"location"`
}

// InputFromVenue copies the editable fields of v.
func InputFromVenue(v *model.Venue) VenueInput {
	return VenueInput{
		Name:        v.Name,
		Description: v.Description,
		Media:       append([]model.Media(nil), v.Media...),
		Price:       v.Price,
		MaxGuests:   v.MaxGuests,
		Rating:      v.Rating,
		Meta:        v.Meta,
		Location:    v.Location,
	}
}

// ListVenues returns one page of venues.
func (c *Client) ListVenues(ctx context.Context, opts ListOptions) ([]model.Venue, PageMeta, error) {
	var out []model.Venue
	var meta PageMeta
	err := c.send(ctx, &call{
		label:     "venues.list",
		method:    http.MethodGet,
		path:      "/holidaze/venues",
		query:     opts.values(),
		out:       &out,
		meta:      &meta,
		cacheable: true,
	})
	if err != nil {
		return nil, PageMeta{}, err
	}
	return out, meta, nil
}

// SearchVenues searches venue names and descriptions. An empty query lists venues.
func (c *Client) SearchVenues(ctx context.Context, query string, opts ListOptions) ([]model.Venue, PageMeta, error) {
	if query == "" {
		return c.ListVenues(ctx, opts)
	}
	q := opts.values()
	q.Set("q", query)

	var out []model.Venue
	var meta PageMeta
	err := c.send(ctx, &call{
		label:     "venues.search",
		method:    http.MethodGet,
		path:      "/holidaze/venues/search",
		query:     q,
		out:       &out,
		meta:      &meta,
		cacheable: true,
	})
	if err != nil {
		return nil, PageMeta{}, err
	}
	return out, meta, nil
}

// GetVenue loads a single venue, optionally with bookings and owner embedded.
func (c *Client) GetVenue(ctx context.Context, id string, vq VenueQuery) (*model.Venue, error) {
	q := url.Values{}
	if vq.Bookings {
		q.Set("_bookings", "true")
	}
	if vq.Owner {
		q.Set("_owner", "true")
	}

	var out model.Venue
	err := c.send(ctx, &call{
		label:     "venues.get",
		method:    http.MethodGet,
		path:      "/holidaze/venues/" + url.PathEscape(id),
		query:     q,
		out:       &out,
		cacheable: !vq.NoCache,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVenue creates a venue owned by the token's user.
func (c *Client) CreateVenue(ctx context.Context, token string, in VenueInput) (*model.Venue, error) {
	var out model.Venue
	err := c.send(ctx, &call{
		label:  "venues.create",
		method: http.MethodPost,
		path:   "/holidaze/venues",
		token:  token,
		body:   in,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "/holidaze/venues")
	return &out, nil
}

// UpdateVenue replaces the editable fields of a venue.
func (c *Client) UpdateVenue(ctx context.Context, token, id string, in VenueInput) (*model.Venue, error) {
	var out model.Venue
	err := c.send(ctx, &call{
		label:  "venues.update",
		method: http.MethodPut,
		path:   "/holidaze/venues/" + url.PathEscape(id),
		token:  token,
		body:   in,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, "/holidaze/venues")
	return &out, nil
}

// DeleteVenue removes a venue.
func (c *Client) DeleteVenue(ctx context.Context, token, id string) error {
	err := c.send(ctx, &call{
		label:  "venues.delete",
		method: http.MethodDelete,
		path:   "/holidaze/venues/" + url.PathEscape(id),
		token:  token,
	})
	if err != nil {
		return err
	}
	c.invalidate(ctx, "/holidaze/venues")
	return nil
}

// ProfileVenues lists the venues managed by a profile.
func (c *Client) ProfileVenues(ctx context.Context, token, name string) ([]model.Venue, error) {
	var out []model.Venue
	err := c.send(ctx, &call{
		label:  "profiles.venues",
		method: http.MethodGet,
		path:   "/holidaze/profiles/" + url.PathEscape(name) + "/venues",
		query:  url.Values{"_bookings": {"true"}},
		token:  token,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
