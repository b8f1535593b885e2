package venueapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"holidaze/internal/model"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Password     string       `json:"password"`
	Bio          string       `json:"bio,omitempty"`
	Avatar       *model.Media `json:"avatar,omitempty"`
	VenueManager bool         `json:"venueManager"`
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the profile returned at login together with the access token.
type LoginResult struct {
	model.Profile
	AccessToken string `json:"accessToken"`
}

// ProfileUpdate is the body of PUT /holidaze/profiles/{name}. Nil fields are left unchanged.
type ProfileUpdate struct {
	Bio          *string      `json:"bio,omitempty"`
	Avatar       *model.Media `json:"avatar,omitempty"`
	Banner       *model.Media `json:"banner,omitempty"`
	VenueManager *bool        `json:"venueManager,omitempty"`
}

// APIKey is a key created with POST /auth/create-api-key.
type APIKey struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Key    string `json:"key"`
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*model.Profile, error) {
	var out model.Profile
	err := c.send(ctx, &call{
		label:  "auth.register",
		method: http.MethodPost,
		path:   "/auth/register",
		body:   req,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var out LoginResult
	err := c.send(ctx, &call{
		label:  "auth.login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   creds,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.Name == "" {
		return nil, errors.New("invalid login response: missing token or username")
	}
	return &out, nil
}

// CreateAPIKey creates an API key for the logged in user.
func (c *Client) CreateAPIKey(ctx context.Context, token, name string) (*APIKey, error) {
	var body any
	if name != "" {
		body = map[string]string{"name": name}
	}
	var out APIKey
	err := c.send(ctx, &call{
		label:  "auth.create_api_key",
		method: http.MethodPost,
		path:   "/auth/create-api-key",
		token:  token,
		body:   body,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProfile loads a profile by name.
func (c *Client) GetProfile(ctx context.Context, token, name string) (*model.Profile, error) {
	var out model.Profile
	err := c.send(ctx, &call{
		label:  "profiles.get",
		method: http.MethodGet,
		path:   "/holidaze/profiles/" + url.PathEscape(name),
		query:  url.Values{"_venues": {"true"}, "_bookings": {"true"}},
		token:  token,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes bio, media or the venue manager flag.
func (c *Client) UpdateProfile(ctx context.Context, token, name string, upd ProfileUpdate) (*model.Profile, error) {
	var out model.Profile
	err := c.send(ctx, &call{
		label:  "profiles.update",
		method: http.MethodPut,
		path:   "/holidaze/profiles/" + url.PathEscape(name),
		token:  token,
		body:   upd,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
