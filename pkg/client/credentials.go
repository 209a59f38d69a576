package client

import "github.com/go-resty/resty/v2"

// Credentials is attached to every protected call. The zero value is unauthenticated.
type Credentials struct {
	token string
}

// Unauthenticated returns credentials that carry no token.
func Unauthenticated() Credentials { return Credentials{} }

// Bearer returns credentials sending token as a bearer token.
func Bearer(token string) Credentials { return Credentials{token: token} }

// Authenticated reports whether a token is present.
func (c Credentials) Authenticated() bool { return c.token != "" }

// Token returns the raw token, empty when unauthenticated.
func (c Credentials) Token() string { return c.token }

func (c Credentials) apply(r *resty.Request) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	r.SetAuthToken(c.token)
	return nil
}
