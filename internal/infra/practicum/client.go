package practicum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"homework_status_bot/internal/domain/homework"

	"github.com/pkg/errors"
)

// DefaultEndpoint is the Practicum homework statuses API.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

// ErrTransport marks every failure to obtain a decoded response: network faults,
// non-200 statuses and undecodable bodies.
var ErrTransport = errors.New("practicum transport fault")

type Client struct {
	endpoint string
	token    string
	httpc    *http.Client
}

func New(endpoint, token string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		token:    token,
		httpc: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchUpdates requests homework statuses changed since the given Unix timestamp.
func (c *Client) FetchUpdates(ctx context.Context, since int64) (homework.PollResponse, error) {
	if since < 0 {
		return homework.PollResponse{}, transportf("negative from_date %d", since)
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return homework.PollResponse{}, transport(err, "parse endpoint")
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(since, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return homework.PollResponse{}, transport(err, "new request")
	}
	req.Header.Set("Authorization", "OAuth "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return homework.PollResponse{}, transport(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return homework.PollResponse{}, transportf("practicum http %d", resp.StatusCode)
	}

	var out homework.PollResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return homework.PollResponse{}, transport(err, "decode response")
	}
	return out, nil
}

type transportError struct {
	cause error
}

func (e *transportError) Error() string { return e.cause.Error() }

func (e *transportError) Unwrap() []error { return []error{ErrTransport, e.cause} }

// Format keeps the pkg/errors stack of the cause available to %+v.
func (e *transportError) Format(s fmt.State, verb rune) {
	if f, ok := e.cause.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}
	_, _ = io.WriteString(s, e.Error())
}

func transport(err error, msg string) error {
	return &transportError{cause: errors.Wrap(err, msg)}
}

func transportf(format string, args ...interface{}) error {
	return &transportError{cause: errors.Errorf(format, args...)}
}
