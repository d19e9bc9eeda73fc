package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReply(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"object output", `{"output":"hello"}`, "hello"},
		{"array text", `[{"text":"hi there"}]`, "hi there"},
		{"not json", "not json at all", "not json at all"},
		{"empty body", "", ""},

		{"output beats text", `{"text":"t","output":"o"}`, "o"},
		{"text beats message", `{"message":"m","text":"t"}`, "t"},
		{"message beats response", `{"response":"r","message":"m"}`, "m"},
		{"response alone", `{"response":"r"}`, "r"},
		{"array uses same order", `[{"response":"r","message":"m"}]`, "m"},
		{"array only first element", `[{"foo":1},{"output":"second"}]`, `[{"foo":1},{"output":"second"}]`},

		{"no known field", `{"foo":"bar"}`, `{"foo":"bar"}`},
		{"empty string skipped", `{"output":"","text":"fallback"}`, "fallback"},
		{"null skipped", `{"output":null,"message":"m"}`, "m"},
		{"zero skipped", `{"output":0,"response":"r"}`, "r"},
		{"false skipped", `{"output":false}`, `{"output":false}`},
		{"number kept as json", `{"output":42}`, "42"},
		{"object kept as json", `{"output":{"a":1}}`, `{"a":1}`},
		{"duplicate key last wins", `{"output":"first","output":"second"}`, "second"},
		{"duplicate key last falsy", `{"output":"first","output":"","text":"t"}`, "t"},
		{"nested field ignored", `{"data":{"output":"inner"},"text":"outer"}`, "outer"},

		{"empty array", `[]`, `[]`},
		{"array of strings", `["hello"]`, `["hello"]`},
		{"json string", `"just a string"`, `"just a string"`},
		{"json null", `null`, `null`},
		{"json number", `12`, `12`},
		{"truncated json", `{"output":"hel`, `{"output":"hel`},

		{"escaped newlines kept", `{"output":"a\nb"}`, "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reply(tt.body))
		})
	}
}
