package structured

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFindsEmbeddedObject(t *testing.T) {
	value, err := Extract(`noise {"a":1} more noise`)
	require.NoError(t, err)

	obj, ok := value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), obj["a"])
}

func TestExtractFindsEmbeddedArray(t *testing.T) {
	value, err := Extract("Here you go:\n```json\n[1,2,3]\n```")
	require.NoError(t, err)

	arr, ok := value.([]any)
	require.True(t, ok)
	assert.Len(t, arr, 3)
}

func TestExtractBareJSON(t *testing.T) {
	value, err := Extract(`"just a string"`)
	require.NoError(t, err)
	assert.Equal(t, "just a string", value)
}

func TestExtractFailsOnProse(t *testing.T) {
	_, err := Extract("not json at all")
	require.Error(t, err)

	var malformed *MalformedResponseError
	assert.True(t, errors.As(err, &malformed))
}

func TestDecodeSanitizesStringLeaves(t *testing.T) {
	raw := `Sure, here's the plan: {"title":"**Big Launch**","nested":{"caption":"## Day One"},"tags":["*go*","#launch"]}`

	var out struct {
		Title  string `json:"title"`
		Nested struct {
			Caption string `json:"caption"`
		} `json:"nested"`
		Tags []string `json:"tags"`
	}
	require.NoError(t, Decode(raw, &out))

	assert.Equal(t, "Big Launch", out.Title)
	assert.Equal(t, "Day One", out.Nested.Caption)
	assert.Equal(t, []string{"go", "#launch"}, out.Tags)
}

func TestDecodeShapeMismatch(t *testing.T) {
	var out []string
	err := Decode(`{"a":1}`, &out)
	require.Error(t, err)

	var malformed *MalformedResponseError
	assert.True(t, errors.As(err, &malformed))
}
