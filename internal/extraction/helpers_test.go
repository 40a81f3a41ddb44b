package extraction

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func loadFixture(t *testing.T, name string) []gjson.Result {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data), "fixture %s is not valid JSON", name)
	return gjson.ParseBytes(data).Array()
}

// fixtureHTML embeds each fixture fragment in a script tag the way rendered
// pages carry them.
func fixtureHTML(t *testing.T, name string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("<html><head><title>Facebook</title></head><body>")
	for _, obj := range loadFixture(t, name) {
		b.WriteString(`<script type="application/json">{"require":[["ScheduledServerJS","handle",null,[{"__bbox":{"result":{"data":`)
		b.WriteString(obj.Raw)
		b.WriteString(`,"extensions":{"is_final":true}}}}]]]}</script>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func parseObjects(t *testing.T, raw ...string) []gjson.Result {
	t.Helper()
	objects, skipped := ParseFragments(raw)
	require.Zero(t, skipped)
	return objects
}
