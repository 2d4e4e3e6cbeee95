// Package colorapi looks up color names and alternative color notations
package colorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultBaseURL is the base url of the public color api
	DefaultBaseURL = "https://www.thecolorapi.com"

	// DefaultRequestTimeout is the timeout applied to every request unless overridden
	DefaultRequestTimeout = 10 * time.Second
)

// Format holds the components of one color notation (rgb, hsl or hsv). Components
// are in the notation's letter order
type Format struct {
	Name       string
	Components []string
}

// Color is a resolved color
type Color struct {
	Name    string
	Hex     string
	Formats []Format
}

// formats lists the notations we render along with their component letters
var formats = []struct {
	name    string
	letters []string
}{
	{name: "rgb", letters: []string{"r", "g", "b"}},
	{name: "hsl", letters: []string{"h", "s", "l"}},
	{name: "hsv", letters: []string{"h", "s", "v"}},
}

// Client fetches colors from the color api
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type clientOptions struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// Option defines an option for the color api Client
type Option func(*clientOptions)

// OptionBaseURL sets the api base url
func OptionBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// OptionTimeout sets the timeout of every request
func OptionTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// OptionHTTPClient sets the http client used for requests. When set, OptionTimeout is ignored
func OptionHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// NewClient creates a new color api Client
func NewClient(options ...Option) (c *Client) {
	opts := clientOptions{baseURL: DefaultBaseURL, timeout: DefaultRequestTimeout}
	for _, option := range options {
		option(&opts)
	}

	httpClient := opts.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	return &Client{baseURL: strings.TrimSuffix(opts.baseURL, "/"), httpClient: httpClient}
}

// FetchColor looks up the color identified by six hexadecimal digits
func (c *Client) FetchColor(ctx context.Context, code string) (color *Color, err error) {
	params := url.Values{}
	params.Set("hex", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/id?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Error creating request for color #%s", code)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "Error fetching color #%s", code)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "Error reading color #%s", code)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchFailedError{StatusCode: resp.StatusCode, Code: code}
	}

	return decodeColor(body, code)
}

type namedValue struct {
	Value *string `json:"value"`
}

type wireColor struct {
	Hex  namedValue                 `json:"hex"`
	Name namedValue                 `json:"name"`
	RGB  map[string]json.RawMessage `json:"rgb"`
	HSL  map[string]json.RawMessage `json:"hsl"`
	HSV  map[string]json.RawMessage `json:"hsv"`
}

func (w wireColor) notation(name string) map[string]json.RawMessage {
	switch name {
	case "rgb":
		return w.RGB
	case "hsl":
		return w.HSL
	default:
		return w.HSV
	}
}

func decodeColor(body []byte, code string) (color *Color, err error) {
	var w wireColor
	if err = json.Unmarshal(body, &w); err != nil {
		return nil, &ParseFailedError{Code: code, Reason: err.Error()}
	}

	if w.Name.Value == nil {
		return nil, &ParseFailedError{Code: code, Reason: "missing required field name.value"}
	}

	color = &Color{Name: *w.Name.Value, Hex: code, Formats: make([]Format, 0, len(formats))}
	if w.Hex.Value != nil {
		color.Hex = strings.TrimPrefix(*w.Hex.Value, "#")
	}

	for _, f := range formats {
		values := w.notation(f.name)

		format := Format{Name: f.name, Components: make([]string, 0, len(f.letters))}
		for _, l := range f.letters {
			raw, ok := values[l]
			if !ok {
				return nil, &ParseFailedError{Code: code, Reason: fmt.Sprintf("missing required field %s.%s", f.name, l)}
			}

			component, err := decodeComponent(raw)
			if err != nil {
				return nil, &ParseFailedError{Code: code, Reason: fmt.Sprintf("invalid field %s.%s: %s", f.name, l, err.Error())}
			}

			format.Components = append(format.Components, component)
		}

		color.Formats = append(color.Formats, format)
	}

	return color, nil
}

// decodeComponent returns the display string of a component given either as a json number
// or a json string
func decodeComponent(raw json.RawMessage) (component string, err error) {
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte(`"`)) {
		err = json.Unmarshal(raw, &component)
		return component, err
	}

	var n json.Number
	if err = json.Unmarshal(raw, &n); err != nil {
		return "", err
	}

	return n.String(), nil
}
