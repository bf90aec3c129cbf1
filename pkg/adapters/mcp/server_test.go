package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/agrimind/pkg/actions"
	"github.com/aretw0/agrimind/pkg/adapters/llm"
	"github.com/aretw0/agrimind/pkg/adapters/memory"
	"github.com/aretw0/agrimind/pkg/adapters/sms"
	"github.com/aretw0/agrimind/pkg/chat"
	"github.com/aretw0/agrimind/pkg/invoker"
	"github.com/aretw0/agrimind/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, gen *llm.Fake, withChat bool) *Server {
	t.Helper()
	reg, err := actions.NewRegistry(context.Background(), actions.Deps{SMS: sms.NewSimulated(nil)})
	require.NoError(t, err)
	inv := invoker.New(reg, gen)

	var opts []Option
	if withChat {
		opts = append(opts, WithChat(chat.NewService(inv, session.NewManager(memory.NewStore()))))
	}
	s, err := NewServer(inv, opts...)
	require.NoError(t, err)

	call(t, s, "initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "1.0.0"},
	})
	return s
}

var nextID int

// call sends one JSON-RPC request and returns its decoded result.
func call(t *testing.T, s *Server, method string, params any) map[string]any {
	t.Helper()
	nextID++
	req, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      nextID,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp := s.MCPServer().HandleMessage(context.Background(), req)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var envelope struct {
		Result map[string]any `json:"result"`
		Error  any            `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope), string(raw))
	require.Nil(t, envelope.Error, string(raw))
	return envelope.Result
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) map[string]any {
	t.Helper()
	return call(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
}

func TestToolsList_OnePerAction(t *testing.T) {
	s := newServer(t, llm.NewFake(), false)

	result := call(t, s, "tools/list", map[string]any{})
	tools, _ := result["tools"].([]any)
	require.Len(t, tools, 7)

	byName := map[string]map[string]any{}
	for _, tool := range tools {
		m := tool.(map[string]any)
		byName[m["name"].(string)] = m
	}
	sendSMS := byName[actions.SendSMSAction]
	require.NotNil(t, sendSMS)
	schema := sendSMS["inputSchema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.ElementsMatch(t, []any{"message", "phoneNumber"}, schema["required"])
}

func TestToolsList_AgriBot(t *testing.T) {
	s := newServer(t, llm.NewFake(), true)
	tools, _ := call(t, s, "tools/list", map[string]any{})["tools"].([]any)
	assert.Len(t, tools, 8)
}

func TestToolsCall_Success(t *testing.T) {
	want := map[string]any{"advisory": "Panda mahindi mapema."}
	s := newServer(t, llm.NewFake().OnJSON(actions.LocalAdvisoryAction, want), false)

	result := callTool(t, s, actions.LocalAdvisoryAction, map[string]any{
		"topic":    "Planting Corn",
		"language": "Swahili",
	})

	assert.NotEqual(t, true, result["isError"])
	structured, _ := result["structuredContent"].(map[string]any)
	require.NotNil(t, structured)
	assert.Equal(t, want, structured["output"])
	assert.NotEmpty(t, result["content"])
}

func TestToolsCall_FailureKinds(t *testing.T) {
	tests := []struct {
		name  string
		gen   *llm.Fake
		args  map[string]any
		kind  string
		calls int
	}{
		{
			name: "validation",
			gen:  llm.NewFake(),
			args: map[string]any{"location": "X"},
			kind: "validation",
		},
		{
			name:  "transport",
			gen:   llm.NewFake().On(actions.WeatherForecastAction, llm.Reply{Err: errors.New("unavailable")}),
			args:  map[string]any{"location": "Napa Valley, CA"},
			kind:  "transport",
			calls: 1,
		},
		{
			name:  "schema mismatch",
			gen:   llm.NewFake().On(actions.WeatherForecastAction, llm.Reply{Text: "sunny and warm"}),
			args:  map[string]any{"location": "Napa Valley, CA"},
			kind:  "schema_mismatch",
			calls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, tt.gen, false)

			result := callTool(t, s, actions.WeatherForecastAction, tt.args)

			assert.Equal(t, true, result["isError"])
			structured, _ := result["structuredContent"].(map[string]any)
			require.NotNil(t, structured)
			failure, _ := structured["error"].(map[string]any)
			require.NotNil(t, failure)
			assert.Equal(t, tt.kind, failure["kind"])
			assert.Len(t, tt.gen.Requests(), tt.calls)
		})
	}
}

func TestToolsCall_AgriBotKeepsHistory(t *testing.T) {
	gen := llm.NewFake().On(actions.ChatAction, llm.Reply{Text: "Hello farmer."}, llm.Reply{Text: "Sorghum."})
	s := newServer(t, gen, true)

	first := callTool(t, s, AgriBotTool, map[string]any{"message": "Hi"})
	structured := first["structuredContent"].(map[string]any)
	id := structured["conversationId"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Hello farmer.", structured["response"])

	second := callTool(t, s, AgriBotTool, map[string]any{"message": "Drought tolerant crop?", "conversationId": id})
	assert.Equal(t, "Sorghum.", second["structuredContent"].(map[string]any)["response"])

	reqs := gen.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[1].Prompt, "- model: Hello farmer.")
}

func TestToolsCall_AgriBotEmptyMessage(t *testing.T) {
	s := newServer(t, llm.NewFake(), true)
	result := callTool(t, s, AgriBotTool, map[string]any{"message": " "})
	assert.Equal(t, true, result["isError"])
}

func TestResources(t *testing.T) {
	s := newServer(t, llm.NewFake(), false)

	list := call(t, s, "resources/list", map[string]any{})
	resources, _ := list["resources"].([]any)
	assert.Len(t, resources, 2)

	for _, tc := range []struct {
		uri, mime, contains string
	}{
		{ActionsURI, "application/json", `"name":"predict-yield"`},
		{SeasonalURI, "text/markdown", "# Seasonal Planning"},
	} {
		t.Run(tc.uri, func(t *testing.T) {
			result := call(t, s, "resources/read", map[string]any{"uri": tc.uri})
			contents, _ := result["contents"].([]any)
			require.Len(t, contents, 1)
			content := contents[0].(map[string]any)
			assert.Equal(t, tc.mime, content["mimeType"])
			assert.Contains(t, fmt.Sprint(content["text"]), tc.contains)
		})
	}
}
