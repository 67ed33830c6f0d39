// Package llmtest provides a scripted chat client for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"codeberg.org/todoai/server/internal/llm"
)

// returned when a script runs out of replies
var ErrScriptExhausted = errors.New("llmtest: no scripted reply left")

// answers a request; lets tests compute replies from the prompt
type ReplyFunc func(req llm.ChatRequest) (*llm.ChatResponse, error)

// a ChatCompleter that replays scripted replies in order and records every request
type Client struct {
	mu       sync.Mutex
	replies  []ReplyFunc
	fallback ReplyFunc
	requests []llm.ChatRequest
}

func New(replies ...ReplyFunc) *Client {
	return &Client{replies: replies}
}

// answers every request with fn once the script is exhausted
func (c *Client) Always(fn ReplyFunc) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fallback = fn
	return c
}

func (c *Client) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)

	var next ReplyFunc
	if len(c.replies) > 0 {
		next = c.replies[0]
		c.replies = c.replies[1:]
	} else {
		next = c.fallback
	}
	c.mu.Unlock()

	if next == nil {
		return nil, ErrScriptExhausted
	}

	return next(req)
}

func (c *Client) Model() string {
	return "scripted"
}

// returns a copy of the recorded requests
func (c *Client) Requests() []llm.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]llm.ChatRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// replies with plain assistant text
func Text(content string) ReplyFunc {
	return func(llm.ChatRequest) (*llm.ChatResponse, error) {
		return &llm.ChatResponse{Content: content, StopReason: "end_turn", Model: "scripted"}, nil
	}
}

// replies with one tool call whose arguments are args encoded as JSON
func ToolCall(id, name string, args any) ReplyFunc {
	return func(llm.ChatRequest) (*llm.ChatResponse, error) {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}

		return &llm.ChatResponse{
			ToolCalls:  []llm.ToolCall{{ID: id, Name: name, Arguments: data}},
			StopReason: "tool_use",
			Model:      "scripted",
		}, nil
	}
}

// replies with the forced response tool carrying data in its "data" field
func Result(data any) ReplyFunc {
	return ToolCall("result", "FormatResponse", map[string]any{"data": data})
}

// fails the request with err
func Fail(err error) ReplyFunc {
	return func(llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, err
	}
}
