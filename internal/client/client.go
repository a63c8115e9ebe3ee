// Package client talks to the nihonngo server's JSON endpoints.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
)

const (
	csrfCookie = "csrftoken"
	csrfHeader = "X-CSRFToken"

	formContentType = "application/x-www-form-urlencoded"
)

// Endpoints holds the absolute URLs the client calls.
type Endpoints struct {
	Base     string
	Question string
	Answer   string
	SignIn   string
}

// ResolveEndpoints resolves endpoint paths against a base URL.
func ResolveEndpoints(base, questionPath, answerPath, signInPath string) (Endpoints, error) {
	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return Endpoints{}, fmt.Errorf("%w: base %q", ErrInvalidEndpoint, base)
	}

	resolve := func(p string) (string, error) {
		ref, err := url.Parse(p)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, p, err)
		}
		return baseURL.ResolveReference(ref).String(), nil
	}

	var ep Endpoints
	ep.Base = baseURL.String()
	if ep.Question, err = resolve(questionPath); err != nil {
		return Endpoints{}, err
	}
	if ep.Answer, err = resolve(answerPath); err != nil {
		return Endpoints{}, err
	}
	if ep.SignIn, err = resolve(signInPath); err != nil {
		return Endpoints{}, err
	}
	return ep, nil
}

// Client is a cookie-keeping JSON client for one server account.
type Client struct {
	endpoints  Endpoints
	base       *url.URL
	jar        http.CookieJar
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client with an empty cookie jar.
func New(endpoints Endpoints, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(endpoints.Base)
	if err != nil {
		return nil, fmt.Errorf("%w: base %q", ErrInvalidEndpoint, endpoints.Base)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		endpoints: endpoints,
		base:      base,
		jar:       jar,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: logger,
	}, nil
}

// Cookies returns the session cookies the server has set.
func (c *Client) Cookies() []entities.Cookie {
	var out []entities.Cookie
	for _, ck := range c.jar.Cookies(c.base) {
		out = append(out, entities.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

// WithCookies restores previously exported session cookies.
func (c *Client) WithCookies(cookies []entities.Cookie) *Client {
	c.setCookies(cookies)
	return c
}

func (c *Client) setCookies(cookies []entities.Cookie) {
	if len(cookies) == 0 {
		return
	}
	hc := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		hc = append(hc, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: "/"})
	}
	c.jar.SetCookies(c.base, hc)
}

// FetchQuestion requests the next exam question.
func (c *Client) FetchQuestion(ctx context.Context) (*entities.QuestionResponse, error) {
	var env questionEnvelope
	if _, err := c.doJSON(ctx, http.MethodGet, c.endpoints.Question, nil, &env); err != nil {
		return nil, err
	}
	return env.toEntity(), nil
}

// SubmitAnswer posts the chosen option index for a question.
func (c *Client) SubmitAnswer(ctx context.Context, questionID, answer string) (*entities.AnswerResult, error) {
	form := url.Values{}
	form.Set("question_id", questionID)
	form.Set("answer", answer)

	var env answerEnvelope
	body, err := c.doJSON(ctx, http.MethodPost, c.endpoints.Answer, form, &env)
	if err != nil {
		return nil, err
	}

	res, err := env.toEntity()
	if err != nil {
		return nil, &TransportError{
			Method: http.MethodPost,
			URL:    c.endpoints.Answer,
			Status: http.StatusOK,
			Body:   string(body),
			Err:    err,
		}
	}
	return res, nil
}

// doJSON performs a request, decodes a JSON reply into out and returns
// the raw body.
func (c *Client) doJSON(ctx context.Context, method, target string, form url.Values, out any) ([]byte, error) {
	status, body, err := c.do(ctx, method, target, form)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return body, &TransportError{
			Method: method,
			URL:    target,
			Status: status,
			Body:   string(body),
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}
	return body, nil
}

// do performs a request and returns the body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, target string, form url.Values) (int, []byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: target, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if form != nil {
		req.Header.Set("Content-Type", formContentType)
	}
	if !csrfSafeMethod(method) {
		if tok := c.csrfToken(req.URL); tok != "" {
			req.Header.Set(csrfHeader, tok)
		}
	}

	c.logger.Debug("sending request",
		zap.String("method", method),
		zap.String("url", target),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{
			Method: method,
			URL:    target,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("read response body: %w", err),
		}
	}

	c.logger.Debug("response received",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, respBody, &TransportError{
			Method: method,
			URL:    target,
			Status: resp.StatusCode,
			Body:   string(respBody),
		}
	}

	return resp.StatusCode, respBody, nil
}

func (c *Client) csrfToken(u *url.URL) string {
	for _, ck := range c.jar.Cookies(u) {
		if ck.Name == csrfCookie {
			return ck.Value
		}
	}
	return ""
}

// csrfSafeMethod reports whether a method needs no CSRF protection.
func csrfSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
