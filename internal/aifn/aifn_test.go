package aifn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"codeberg.org/todoai/server/internal/llm"
	"codeberg.org/todoai/server/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fruit struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

var listFruit = Definition{
	Name:        "list_fruit",
	Description: "Returns a list of n fruit.",
	Params: []Param{
		{Name: "n", Type: TypeInteger, Default: 2, Validate: "gte=0,lte=50"},
	},
}

func TestCall_DecodesForcedTool(t *testing.T) {
	client := llmtest.New(llmtest.Result([]string{"apple", "banana"}))

	fn, err := New[[]string](client, listFruit)
	require.NoError(t, err)

	got, err := fn.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana"}, got)

	reqs := client.Requests()
	require.Len(t, reqs, 1)

	req := reqs[0]
	assert.Equal(t, "FormatResponse", req.ToolChoice)
	require.Len(t, req.Tools, 1)
	assert.Contains(t, req.System, "list_fruit(n: integer = 2) -> []string")
	assert.Contains(t, req.System, "Returns a list of n fruit.")
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "- n: 2")

	var params map[string]any
	require.NoError(t, json.Unmarshal(req.Tools[0].Parameters, &params))
	assert.Equal(t, []any{"data"}, params["required"])

	data := params["properties"].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "array", data["type"])
	assert.Equal(t, "The data to format.", data["description"])
}

func TestCall_StructResult(t *testing.T) {
	client := llmtest.New(llmtest.Result(map[string]any{"name": "kiwi", "color": "green"}))

	fn, err := New[fruit](client, Definition{
		Name:   "describe_fruit",
		Params: []Param{{Name: "description", Type: TypeString, Required: true}},
	})
	require.NoError(t, err)

	got, err := fn.Call(context.Background(), Args{"description": "fuzzy and green"})
	require.NoError(t, err)
	assert.Equal(t, fruit{Name: "kiwi", Color: "green"}, got)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(fn.ReturnSchema(), &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Contains(t, schema["properties"], "color")
	assert.NotContains(t, schema, "$schema")
}

func TestCall_AcceptsStringWrappedResult(t *testing.T) {
	client := llmtest.New(llmtest.Result(`["red", "blue"]`))

	fn, err := New[[]string](client, Definition{Name: "colors"})
	require.NoError(t, err)

	got, err := fn.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "blue"}, got)
}

func TestCall_BadResponses(t *testing.T) {
	tests := []struct {
		name  string
		reply llmtest.ReplyFunc
	}{
		{name: "plain text", reply: llmtest.Text("I think it is an apple")},
		{name: "wrong field", reply: llmtest.ToolCall("x", "FormatResponse", map[string]any{"value": true})},
		{name: "wrong type", reply: llmtest.Result("definitely")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := New[bool](llmtest.New(tt.reply), Definition{Name: "is_fruit"})
			require.NoError(t, err)

			_, err = fn.Call(context.Background(), nil)
			assert.ErrorIs(t, err, ErrBadResponse)
		})
	}
}

func TestCall_ProviderError(t *testing.T) {
	apiErr := &llm.APIError{Provider: llm.ProviderOpenAI, StatusCode: 500, Body: "boom"}
	fn, err := New[string](llmtest.New(llmtest.Fail(apiErr)), Definition{Name: "echo"})
	require.NoError(t, err)

	_, err = fn.Call(context.Background(), nil)

	var target *llm.APIError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 500, target.StatusCode)
}

func TestMap_PreservesOrder(t *testing.T) {
	client := llmtest.New().Always(func(req llm.ChatRequest) (*llm.ChatResponse, error) {
		// echo the bound n back so order can be checked
		content := req.Messages[0].Content
		idx := strings.Index(content, "- n: ")
		var n int
		_, err := fmt.Sscanf(content[idx:], "- n: %d", &n)
		if err != nil {
			return nil, err
		}
		return llmtest.Result(n * 10)(req)
	})

	fn, err := New[int](client, listFruit, WithConcurrency(3))
	require.NoError(t, err)

	argSets := []Args{{"n": 1}, {"n": 2}, {"n": 3}, {"n": 4}, {"n": 5}}

	got, err := fn.Map(context.Background(), argSets)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, got)
	assert.Len(t, client.Requests(), 5)

	anyResults, err := fn.InvokeAll(context.Background(), argSets[:2])
	require.NoError(t, err)
	assert.Equal(t, []any{10, 20}, anyResults)
}

func TestMap_StopsOnError(t *testing.T) {
	fn, err := New[int](llmtest.New(), listFruit)
	require.NoError(t, err)

	_, err = fn.Map(context.Background(), []Args{{"n": 1}, {"n": 2}})
	assert.ErrorIs(t, err, llmtest.ErrScriptExhausted)
}

func TestMap_RejectsBadArgsUpFront(t *testing.T) {
	client := llmtest.New().Always(llmtest.Result(1))

	fn, err := New[int](client, listFruit)
	require.NoError(t, err)

	_, err = fn.Map(context.Background(), []Args{{"n": 1}, {"n": "lots"}})
	assert.ErrorIs(t, err, ErrInvalidArguments)
	assert.Empty(t, client.Requests())
}

func TestBind(t *testing.T) {
	def := Definition{
		Name: "list_fruit_color",
		Params: []Param{
			{Name: "n", Type: TypeInteger, Required: true, Validate: "gte=0,lte=50"},
			{Name: "color", Type: TypeString, Required: true},
			{Name: "ripe", Type: TypeBoolean, Default: true},
		},
	}

	tests := []struct {
		name    string
		args    Args
		want    []argument
		wantErr string
	}{
		{
			name: "json values",
			args: Args{"n": float64(3), "color": "red"},
			want: []argument{{"n", 3}, {"color", "red"}, {"ripe", true}},
		},
		{
			name: "query strings",
			args: Args{"n": "4", "color": "yellow", "ripe": "false"},
			want: []argument{{"n", 4}, {"color", "yellow"}, {"ripe", false}},
		},
		{name: "missing required", args: Args{"n": 1}, wantErr: `argument "color": is required`},
		{name: "unknown argument", args: Args{"n": 1, "color": "red", "size": 2}, wantErr: `argument "size": unexpected argument`},
		{name: "fractional integer", args: Args{"n": 1.5, "color": "red"}, wantErr: "expected integer"},
		{name: "not a number", args: Args{"n": "lots", "color": "red"}, wantErr: "expected integer"},
		{name: "integer too large", args: Args{"n": 1e300, "color": "red"}, wantErr: "expected integer"},
		{name: "integer too small", args: Args{"n": -1e19, "color": "red"}, wantErr: "expected integer"},
		{name: "just past max int", args: Args{"n": float64(1 << 63), "color": "red"}, wantErr: "expected integer"},
		{name: "validation", args: Args{"n": 99, "color": "red"}, wantErr: "failed validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bind(def, tt.args)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidArguments)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_Collections(t *testing.T) {
	v, err := coerce(TypeArray, `["a", 1]`)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", float64(1)}, v)

	v, err = coerce(TypeObject, `{"k": "v"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, v)

	_, err = coerce(TypeObject, `[1]`)
	assert.Error(t, err)

	v, err = coerce(TypeNumber, "2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
}

func TestWithPrompt(t *testing.T) {
	client := llmtest.New(llmtest.Result("ok"))

	fn, err := New[string](client, Definition{Name: "greet"}, WithPrompt("Pretend to be {{.Name}}."))
	require.NoError(t, err)

	_, err = fn.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Pretend to be greet.", client.Requests()[0].System)
	assert.Contains(t, client.Requests()[0].Messages[0].Content, "(no inputs)")

	_, err = New[string](client, Definition{Name: "bad"}, WithPrompt("{{.Name"))
	assert.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	_, err := New[string](nil, Definition{Name: "x"})
	assert.Error(t, err)

	_, err = New[string](llmtest.New(), Definition{})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	client := llmtest.New()
	reg := NewRegistry()

	b := Must[string](New[string](client, Definition{Name: "b"}))
	a := Must[[]string](New[[]string](client, listFruit))

	require.NoError(t, reg.Register(b, a))
	assert.ErrorIs(t, reg.Register(a), ErrDuplicateName)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[1].Definition().Name)

	fn, err := reg.Get("list_fruit")
	require.NoError(t, err)
	assert.Equal(t, "list_fruit(n: integer = 2) -> []string", fn.Signature())

	_, err = reg.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownFunction)

	info := Describe(fn)
	assert.Equal(t, "list_fruit", info.Name)
	props := info.Parameters["properties"].(map[string]any)
	assert.Contains(t, props, "n")
}
