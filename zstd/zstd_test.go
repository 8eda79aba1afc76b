package zstd

import (
	"context"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/qualify"
	"github.com/zoobzio/qualify/json"
	"github.com/zoobzio/qualify/msgpack"
)

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json+zstd", New(json.New()).ContentType())
	assert.Equal(t, "application/msgpack+zstd", New(msgpack.New()).ContentType())
}

func TestRoundTrip(t *testing.T) {
	doc := `{"items":["` + strings.Repeat("payload-", 64) + `"]}`

	for _, level := range []zstd.EncoderLevel{zstd.SpeedFastest, zstd.SpeedBestCompression} {
		t.Run(level.String(), func(t *testing.T) {
			f := New(json.New(), WithLevel(level))
			data, err := f.FromJSON([]byte(doc))
			require.NoError(t, err)
			assert.Less(t, len(data), len(doc))

			out, err := f.ToJSON(data)
			require.NoError(t, err)
			assert.Equal(t, doc, string(out))
		})
	}
}

func TestToJSON_Corrupt(t *testing.T) {
	_, err := New(json.New()).ToJSON([]byte("not zstd"))
	assert.Error(t, err)
}

func TestFromJSON_InnerError(t *testing.T) {
	_, err := New(json.New()).FromJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestAdapter_Stacked(t *testing.T) {
	a, err := qualify.For[[]string](qualify.NewRegistry(), qualify.Wrap("items"))
	require.NoError(t, err)

	f := New(msgpack.New())
	ctx := context.Background()
	data, err := a.MarshalTo(ctx, f, []string{"a", "b"})
	require.NoError(t, err)

	got, err := a.UnmarshalFrom(ctx, f, data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}
