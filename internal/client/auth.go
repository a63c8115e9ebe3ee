package client

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
)

// SignInResult is the reply to a successful sign-in.
type SignInResult struct {
	Message  string
	Redirect string
}

// SignIn authenticates the client's cookie jar. The password is sent as its
// hex MD5 digest. With remember set the server issues a long-lived token
// cookie, which is stored in the jar like any other set_cookies entry.
func (c *Client) SignIn(ctx context.Context, name, password string, remember bool) (*SignInResult, error) {
	if strings.TrimSpace(name) == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	// The sign-in page sets the csrftoken cookie.
	if _, _, err := c.do(ctx, http.MethodGet, c.endpoints.SignIn, nil); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("name", name)
	form.Set("password", HashPassword(password))
	if remember {
		form.Set("remember", "on")
	}

	var env signInEnvelope
	if _, err := c.doJSON(ctx, http.MethodPost, c.endpoints.SignIn, form, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &RejectedError{Message: env.Message}
	}

	cookies := make([]entities.Cookie, 0, len(env.SetCookies))
	for k, v := range env.SetCookies {
		cookies = append(cookies, entities.Cookie{Name: k, Value: v})
	}
	c.setCookies(cookies)

	c.logger.Info("signed in",
		zap.String("name", name),
		zap.Int("set_cookies", len(cookies)),
	)

	return &SignInResult{Message: env.Message, Redirect: env.Redirect}, nil
}

// HashPassword returns the lowercase hex MD5 digest the server expects.
func HashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}
