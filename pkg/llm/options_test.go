package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest("hello",
		WithModel("o3-mini"),
		WithInstructions("be brief"),
		WithJSONOutput(true),
		WithTemperature(0.2),
		WithMaxTokens(256),
	)

	assert.Equal(t, Request{
		Model:        "o3-mini",
		Instructions: "be brief",
		Input:        "hello",
		JSONOutput:   true,
		Temperature:  0.2,
		MaxTokens:    256,
	}, req)
}

func TestProviderFunc(t *testing.T) {
	var p Provider = ProviderFunc(func(_ context.Context, req Request) (*Response, error) {
		return &Response{Output: "echo: " + req.Input}, nil
	})

	resp, err := p.Run(context.Background(), NewRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", resp.Output)
}
