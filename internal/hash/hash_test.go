package hash

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestSumIgnoresInsertionOrder(t *testing.T) {
	m1 := map[string]any{}
	m1["author"] = "Ada"
	m1["page_count"] = 3
	m1["sheet_names"] = []string{"A", "B"}

	m2 := map[string]any{}
	m2["sheet_names"] = []string{"A", "B"}
	m2["page_count"] = 3
	m2["author"] = "Ada"

	assert.Equal(t, Sum(m1), Sum(m2))
}

func TestSumFormat(t *testing.T) {
	inputs := []map[string]any{
		{},
		{"error": "Failed to extract PDF metadata: EOF"},
		{"a": 1, "b": []string{}, "c": "ü"},
	}
	for _, m := range inputs {
		h := Sum(m)
		assert.Len(t, h, 64)
		assert.Regexp(t, hexDigest, h)
		assert.True(t, Valid(h))
	}
}

func TestSumKnownDigests(t *testing.T) {
	cases := []struct {
		name      string
		in        map[string]any
		canonical string
		digest    string
	}{
		{
			name:      "simple",
			in:        map[string]any{"b": 1, "a": "x"},
			canonical: `{"a": "x", "b": 1}`,
			digest:    "385820f0096fd558f4091319e7fa742cebf877dc3baca180981889f1c40eca84",
		},
		{
			name:      "csv",
			in:        map[string]any{"row_count": 2, "column_names": []string{"a", "b", "c"}, "column_count": 3},
			canonical: `{"column_count": 3, "column_names": ["a", "b", "c"], "row_count": 2}`,
			digest:    "97b130eeff1fc5edc4b6737ae949649703af4617d312dac682c1b62251ad52be",
		},
		{
			name:      "error result",
			in:        map[string]any{"error": "Unsupported file type: .xyz"},
			canonical: `{"error": "Unsupported file type: .xyz"}`,
			digest:    "d5394b3eef5aa091c96eca3cb710074140a01879f68849c7096c938feb12ab26",
		},
		{
			name:      "escapes and floats",
			in:        map[string]any{"title": "Résumé 😀", "n": 1.5, "big": 1e16, "f": 2.0, "ctl": "a\x7fb\tc"},
			canonical: `{"big": 1e+16, "ctl": "a\u007fb\tc", "f": 2.0, "n": 1.5, "title": "R\u00e9sum\u00e9 \ud83d\ude00"}`,
			digest:    "c8ce0f935daf2eb944714575b3ccb0ba01eee15f2ac808e72b4d26b61cc3fb14",
		},
		{
			name:      "empty",
			in:        map[string]any{},
			canonical: `{}`,
			digest:    "44136fa355b3678a1146ad16f7e8649e94fb4fc21fe77e8310c060f61caaff8a",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.canonical, string(Canonical(tc.in)))
			assert.Equal(t, tc.digest, Sum(tc.in))
		})
	}
}

func TestSumStableAcrossJSONRoundTrip(t *testing.T) {
	orig := map[string]any{
		"column_count": 3,
		"column_names": []string{"a", "b", "c"},
		"row_count":    2,
		"title":        "naïve",
	}

	decoded, err := Decode(Canonical(orig))
	require.NoError(t, err)
	assert.Equal(t, Sum(orig), Sum(decoded))

	var plain map[string]any
	require.NoError(t, json.Unmarshal(Canonical(orig), &plain))
	assert.NotEqual(t, Sum(orig), Sum(plain), "float64 decoding turns 3 into 3.0")
}

func TestCanonicalIsValidJSON(t *testing.T) {
	m := map[string]any{"quote": `say "hi"`, "slash": `a\b`, "nl": "x\ny", "nested": map[string]any{"z": nil, "a": true}}
	var out map[string]any
	require.NoError(t, json.Unmarshal(Canonical(m), &out))
	assert.Equal(t, `say "hi"`, out["quote"])
	assert.Equal(t, "x\ny", out["nl"])
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	_, err := Decode([]byte(`["a"]`))
	require.Error(t, err)
	_, err = Decode([]byte(`{"a": 1} trailing`))
	require.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.False(t, Valid(""))
	assert.False(t, Valid("ABCDEF"))
	assert.False(t, Valid("385820F0096FD558F4091319E7FA742CEBF877DC3BACA180981889F1C40ECA84"))
	assert.True(t, Valid("385820f0096fd558f4091319e7fa742cebf877dc3baca180981889f1c40eca84"))
}
