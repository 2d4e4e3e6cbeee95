package omegabot_test

import (
	"log"
	"strings"
	"testing"

	"github.com/omega-numworks/omegabot"
	"github.com/stretchr/testify/assert"
)

func TestSLogger(t *testing.T) {
	tests := map[string]struct {
		debug         bool
		expectedDebug string
	}{
		"DebugEnabled":  {debug: true, expectedDebug: "Fetching issue #12 of numworks/epsilon\n"},
		"DebugDisabled": {debug: false, expectedDebug: ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var b strings.Builder
			slog := omegabot.NewSLogger(log.New(&b, "", 0), tc.debug)

			slog.Debugf("Fetching issue #%d of %s\n", 12, "numworks/epsilon")
			assert.Equal(t, tc.expectedDebug, b.String())

			b.Reset()
			slog.Printf("Error during request (%d)\n", 404)
			assert.Equal(t, "Error during request (404)\n", b.String())
		})
	}
}
