package chat

import (
	"testing"

	gateway "github.com/danilofalcao/torchserve-gateway/internal/api/gateway/v1"
	torchserve "github.com/danilofalcao/torchserve-gateway/internal/api/torchserve/v1"
	"github.com/stretchr/testify/require"
)

func gen(s string) *torchserve.GeneratedText {
	return &torchserve.GeneratedText{GeneratedText: s}
}

func TestNormalizeStripsEcho(t *testing.T) {
	resp, err := Normalize(gen("P continuation"), "P", "r-1")
	require.NoError(t, err)
	require.Equal(t, "r-1", resp.RecipientID)
	require.Equal(t, []gateway.Message{{Role: gateway.RoleAssistant, Content: "continuation"}}, resp.Messages)
}

func TestNormalizeStripsCompiledPrompt(t *testing.T) {
	prompt := "[INST] Hi [/INST] "
	resp, err := Normalize(gen(prompt+" Hi there \n"), prompt, "r")
	require.NoError(t, err)
	require.Equal(t, "Hi there", resp.Messages[0].Content)
}

func TestNormalizeKeepsOutputWhenPromptNotEchoed(t *testing.T) {
	resp, err := Normalize(gen("[INST]  Hi [/INST] Hello"), "[INST] Hi [/INST] ", "r")
	require.NoError(t, err)
	require.Equal(t, "[INST]  Hi [/INST] Hello", resp.Messages[0].Content)
}

func TestNormalizeOnlyStripsLeadingPrompt(t *testing.T) {
	resp, err := Normalize(gen("answer P"), "P", "r")
	require.NoError(t, err)
	require.Equal(t, "answer P", resp.Messages[0].Content)
}

func TestNormalizeEmptyGeneration(t *testing.T) {
	for name, g := range map[string]*torchserve.GeneratedText{
		"nil":         nil,
		"empty":       gen(""),
		"echo only":   gen("P"),
		"echo spaces": gen("P   \n"),
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := Normalize(g, "P", "r")
			require.ErrorIs(t, err, ErrEmptyGeneration)
			require.Nil(t, resp)
		})
	}
}

func TestStripEchoEmptyPrompt(t *testing.T) {
	require.Equal(t, "text", StripEcho("  text ", ""))
}
