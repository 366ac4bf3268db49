package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/verctl/internal/domain"
)

func testInfo() domain.VersionInfo {
	return domain.VersionInfo{
		Major:      0,
		Minor:      5,
		Patch:      0,
		Commits:    1,
		Hash:       "aaa111",
		Branch:     "main",
		LastTag:    "myservice-v0.4.0",
		LastHash:   "bbb222",
		Tag:        "myservice-v0.5.0",
		TagPrefix:  "myservice-v",
		Semver:     "0.5.0",
		SemverFull: "0.5.0",
		PEP440:     "0.5.0",
		NuGet:      "0.5.0",
		Timestamp:  "20240502T030405Z",
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := Writer{}.Write(&buf, testInfo(), FormatJSON, Options{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(5), decoded["minor"])
	assert.Equal(t, "myservice-v0.5.0", decoded["tag"])
	assert.Equal(t, "0.5.0", decoded["semver"])
	assert.Len(t, decoded, 15)

	// key order must follow the fixed field order
	out := buf.String()
	last := -1
	for _, name := range domain.FieldNames() {
		idx := strings.Index(out, `"`+name+`"`)
		require.GreaterOrEqual(t, idx, 0, "missing key %s", name)
		assert.Greater(t, idx, last, "key %s out of order", name)
		last = idx
	}
	assert.Equal(t, 1, strings.Count(out, "\n"), "compact JSON is a single line")
}

func TestWriteJSONPretty(t *testing.T) {
	var buf bytes.Buffer
	err := Writer{}.Write(&buf, testInfo(), FormatJSON, Options{JSONPretty: true})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "\n  \"major\": 0")
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 15)
}

func TestWriteEnv(t *testing.T) {
	var buf bytes.Buffer
	err := Writer{}.Write(&buf, testInfo(), FormatEnv, Options{EnvPrefix: "version_"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 15)
	assert.Equal(t, "VERSION_MAJOR=0", lines[0])
	assert.Equal(t, `VERSION_HASH="aaa111"`, lines[4])
	assert.Equal(t, `VERSION_TAG="myservice-v0.5.0"`, lines[8])
	assert.Equal(t, `VERSION_TIMESTAMP="20240502T030405Z"`, lines[14])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := Writer{}.Write(&buf, testInfo(), FormatCSV, Options{CSVHeader: true})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(domain.FieldNames(), ","), lines[0])
	assert.Equal(t, "0,5,0,1,aaa111,main,myservice-v0.4.0,bbb222,myservice-v0.5.0,myservice-v,0.5.0,0.5.0,0.5.0,0.5.0,20240502T030405Z", lines[1])
}

func TestWriteCSVNoHeader(t *testing.T) {
	var buf bytes.Buffer
	err := Writer{}.Write(&buf, testInfo(), FormatCSV, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestFormatsAgreeOnValues(t *testing.T) {
	info := testInfo()

	var jsonBuf, envBuf, csvBuf bytes.Buffer
	require.NoError(t, Writer{}.Write(&jsonBuf, info, FormatJSON, Options{}))
	require.NoError(t, Writer{}.Write(&envBuf, info, FormatEnv, Options{}))
	require.NoError(t, Writer{}.Write(&csvBuf, info, FormatCSV, Options{}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	require.Len(t, decoded, 15)
	for _, f := range info.Fields() {
		assert.Contains(t, envBuf.String(), strings.ToUpper(f.Name)+"=")
	}
	assert.Contains(t, csvBuf.String(), "myservice-v0.5.0")
	assert.Contains(t, csvBuf.String(), "20240502T030405Z")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	err := Writer{}.Write(&buf, testInfo(), FormatText, Options{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "tag")
	assert.Contains(t, out, "myservice-v0.5.0")
	assert.NotContains(t, out, "\x1b[", "non-tty output stays uncolored")
}

func TestWriteShowSubset(t *testing.T) {
	var buf bytes.Buffer
	err := Writer{}.Write(&buf, testInfo(), FormatCSV, Options{
		Fields:    []string{"tag", "semver"},
		CSVHeader: true,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "semver,tag", lines[0])
	assert.Equal(t, "0.5.0,myservice-v0.5.0", lines[1])
}

func TestWriteUnknownField(t *testing.T) {
	var buf bytes.Buffer
	err := Writer{}.Write(&buf, testInfo(), FormatJSON, Options{Fields: []string{"bogus"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Writer{}.Write(&buf, testInfo(), Format("xml"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFormat)
}
