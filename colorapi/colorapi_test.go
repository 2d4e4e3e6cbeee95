package colorapi_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/omega-numworks/omegabot/colorapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const casper = `{
	"hex": {"value": "#A1B2C3", "clean": "A1B2C3"},
	"rgb": {"fraction": {"r": 0.63, "g": 0.69, "b": 0.76}, "r": 161, "g": 178, "b": 195, "value": "rgb(161, 178, 195)"},
	"hsl": {"fraction": {"h": 0.58, "s": 0.24, "l": 0.70}, "h": 210, "s": 24, "l": 70, "value": "hsl(210, 24%%, 70%%)"},
	"hsv": {"fraction": {"h": 0.58, "s": 0.17, "v": 0.76}, "value": "hsv(210, 17%%, 76%%)", "h": 210, "s": "17", "v": 76.5},
	"name": {"value": "Casper", "closest_named_hex": "#ADBED1", "exact_match_name": false, "distance": 302}
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (client *colorapi.Client) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return colorapi.NewClient(colorapi.OptionBaseURL(server.URL + "/"))
}

func TestFetchColor(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/id", r.URL.Path)
		assert.Equal(t, "a1b2c3", r.URL.Query().Get("hex"))

		fmt.Fprintf(w, casper)
	})

	color, err := client.FetchColor(context.Background(), "a1b2c3")
	require.NoError(t, err)

	assert.Equal(t, &colorapi.Color{
		Name: "Casper",
		Hex:  "A1B2C3",
		Formats: []colorapi.Format{
			{Name: "rgb", Components: []string{"161", "178", "195"}},
			{Name: "hsl", Components: []string{"210", "24", "70"}},
			{Name: "hsv", Components: []string{"210", "17", "76.5"}},
		},
	}, color)
}

func TestFetchColorFailures(t *testing.T) {
	tests := map[string]struct {
		status        int
		body          string
		expectedFetch int
		parseFailed   bool
	}{
		"NotFound":         {status: http.StatusNotFound, body: `{}`, expectedFetch: http.StatusNotFound},
		"ServerError":      {status: http.StatusInternalServerError, body: `oops`, expectedFetch: http.StatusInternalServerError},
		"MalformedJSON":    {status: http.StatusOK, body: `{"name": `, parseFailed: true},
		"MissingName":      {status: http.StatusOK, body: `{"rgb": {"r": 1, "g": 2, "b": 3}}`, parseFailed: true},
		"MissingComponent": {status: http.StatusOK, body: `{"name": {"value": "x"}, "rgb": {"r": 1, "g": 2}}`, parseFailed: true},
		"InvalidComponent": {status: http.StatusOK, body: `{"name": {"value": "x"}, "rgb": {"r": {}, "g": 2, "b": 3}}`, parseFailed: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			})

			_, err := client.FetchColor(context.Background(), "a1b2c3")

			if tc.parseFailed {
				var parseErr *colorapi.ParseFailedError
				assert.ErrorAs(t, err, &parseErr)
			} else {
				var fetchErr *colorapi.FetchFailedError
				if assert.ErrorAs(t, err, &fetchErr) {
					assert.Equal(t, tc.expectedFetch, fetchErr.StatusCode)
					assert.Equal(t, fmt.Sprintf("Fetching color #a1b2c3 failed with status %d", tc.expectedFetch), fetchErr.Error())
				}
			}
		})
	}
}

func TestFetchColorWithoutHexEcho(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": {"value": "Black"}, "rgb": {"r": 0, "g": 0, "b": 0}, "hsl": {"h": 0, "s": 0, "l": 0}, "hsv": {"h": 0, "s": 0, "v": 0}}`)
	})

	color, err := client.FetchColor(context.Background(), "000000")
	require.NoError(t, err)

	assert.Equal(t, "000000", color.Hex)
	assert.Equal(t, "Black", color.Name)
}
