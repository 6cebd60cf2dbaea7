package feedsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/feed"
)

// Client reads the university feed API: `GET <base>/news` and `GET <base>/calendar/events`, both JSON lists.
type Client struct {
	baseURL string
	rest    *rest.Client
}

var _ feed.Client = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Feed.BaseURL, "/"),
		rest:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.Feed.Timeout}},
	}
}

func (c *Client) get(ctx context.Context, endpoint string, dst interface{}) error {
	req, err := rest.BuildRequestObject(rest.Request{
		Method:  rest.Get,
		BaseURL: c.baseURL + endpoint,
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return errors.Wrapf(err, "building %s request", endpoint)
	}

	httpRes, err := c.rest.MakeRequest(req.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(err, "requesting %s", endpoint)
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return errors.Wrapf(err, "reading %s response", endpoint)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("requesting %s: unexpected status %d", endpoint, res.StatusCode)
	}
	return errors.Wrapf(json.Unmarshal([]byte(res.Body), dst), "decoding %s", endpoint)
}

func (c *Client) FetchNews(ctx context.Context) ([]feed.News, error) {
	var news []feed.News
	if err := c.get(ctx, "/news", &news); err != nil {
		return nil, err
	}
	return news, nil
}

func (c *Client) FetchCalendarEvents(ctx context.Context) ([]feed.CalendarEvent, error) {
	var events []feed.CalendarEvent
	if err := c.get(ctx, "/calendar/events", &events); err != nil {
		return nil, err
	}
	return events, nil
}
