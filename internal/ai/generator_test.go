package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestBuildContents(t *testing.T) {
	contents := buildContents(Request{
		History: []Message{
			{Role: "user", Content: "hi"},
			{Role: "model", Content: "hello"},
		},
		Prompt: "how much protein?",
	})

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, string(genai.RoleUser), contents[2].Role)
	require.Len(t, contents[2].Parts, 1)
	assert.Equal(t, "how much protein?", contents[2].Parts[0].Text)
}
