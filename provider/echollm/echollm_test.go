package echollm

import (
	"context"
	"testing"

	"github.com/Aman-CERP/ragkit/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEchoesQuestion(t *testing.T) {
	l := New()
	out, err := l.Generate(context.Background(), "Context:\nfoo\n\nQuestion: what is foo?", "", provider.GenerateOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, "what is foo?")
}

func TestStreamEmitsWordsThenCloses(t *testing.T) {
	l := New()
	ch, err := l.Stream(context.Background(), "Context:\nfoo\n\nQuestion: what is foo?", "", provider.GenerateOptions{})
	require.NoError(t, err)

	var got string
	for chunk := range ch {
		got += chunk
	}
	assert.Contains(t, got, "foo")
}

func TestStreamStopsOnContextCancel(t *testing.T) {
	l := &LLM{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch, err := l.Stream(ctx, "Context:\nfoo\n\nQuestion: what?", "", provider.GenerateOptions{})
	require.NoError(t, err)

	count := 0
	for range ch {
		count++
	}
	assert.LessOrEqual(t, count, 1)
}
