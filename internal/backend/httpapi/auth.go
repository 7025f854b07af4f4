package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"evotodo/internal/service"
)

// Login exchanges email and password for an access token using the
// password grant at <baseURL>/auth/token. hc may be nil.
func Login(ctx context.Context, baseURL, email, password string, hc *http.Client) (*oauth2.Token, error) {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  baseURL + "/auth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	if hc != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	tok, err := conf.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			se := &StatusError{Code: re.Response.StatusCode, Detail: detail(re.Body)}
			if se.Code == http.StatusBadRequest {
				// The password grant reports bad credentials as 400.
				return nil, fmt.Errorf("%w: %s", service.ErrUnauthorized, se.Detail)
			}
			return nil, se
		}
		return nil, wrapError(err)
	}
	return tok, nil
}

// Signup registers a new account at <baseURL>/auth/signup. The server logs
// the new user in and returns a token.
func Signup(ctx context.Context, baseURL, email, password string, hc *http.Client) (*oauth2.Token, error) {
	opts := []Option{}
	if hc != nil {
		opts = append(opts, WithHTTPClient(hc))
	}
	c := New(baseURL, nil, opts...)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, baseURL+"/auth/signup", body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("signup response has no access token")
	}
	return &oauth2.Token{AccessToken: resp.AccessToken, TokenType: resp.TokenType}, nil
}
