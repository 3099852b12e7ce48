package translation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringify(t *testing.T) {
	cases := map[string]string{
		`"Stop sign"`:          "Stop sign",
		`"line\nbreak"`:        "line\nbreak",
		`null`:                 "",
		``:                     "",
		`42`:                   "42",
		`true`:                 "true",
		`{ "text" : "nested" }`: `{"text":"nested"}`,
		`[1, 2]`:               `[1,2]`,
	}
	for in, want := range cases {
		assert.Equal(t, want, Stringify(json.RawMessage(in)), "input %q", in)
	}
}

func TestPayloadResultCoercesEveryField(t *testing.T) {
	var p Payload
	err := json.Unmarshal([]byte(`{"question_text": 12, "options": ["True", false, {"a":1}], "explanation": null}`), &p)
	assert.NoError(t, err)

	r := p.Result()
	assert.Equal(t, "12", r.QuestionText)
	assert.Equal(t, []string{"True", "false", `{"a":1}`}, r.Options)
	assert.Equal(t, "", r.Explanation)
	assert.False(t, r.Complete())
}

func TestPayloadResultWrapsScalarOptions(t *testing.T) {
	p := Payload{Options: json.RawMessage(`"only one"`)}
	assert.Equal(t, []string{"only one"}, p.Result().Options)
	assert.Equal(t, []string{}, Payload{}.Result().Options)
}

func TestPayloadFromRoundTrips(t *testing.T) {
	r := Result{QuestionText: "Q", Options: []string{"A", "B"}, Explanation: "E"}
	assert.Equal(t, r, PayloadFrom(r).Result())
}
