// Package prompt compiles a chat conversation into the single prompt string a
// causal language model continues.
package prompt

import (
	"fmt"
	"strings"

	gateway "github.com/danilofalcao/torchserve-gateway/internal/api/gateway/v1"
)

// Template is the set of delimiters for one model family. UserEnd leaves the
// assistant slot open: the model continues right after it. The special
// <s>/</s> tokens are left out: the model server decodes with special tokens
// skipped, and the echoed prompt has to match the compiled one verbatim.
type Template struct {
	SystemStart string
	SystemEnd   string
	UserStart   string
	UserEnd     string
}

// Llama2 is the canonical template family.
var Llama2 = Template{
	SystemStart: "<<SYS>>\n",
	SystemEnd:   "\n<</SYS>>\n\n",
	UserStart:   "[INST] ",
	UserEnd:     " [/INST] ",
}

// templates holds per-model overrides. Every model currently uses Llama2.
var templates = map[string]Template{}

// TemplateFor returns the template used for model.
func TemplateFor(model string) Template {
	if t, ok := templates[model]; ok {
		return t
	}
	return Llama2
}

// Warning records a message left out of the prompt.
type Warning struct {
	Index int
	Role  string
}

func (w Warning) String() string {
	return fmt.Sprintf("skipped message %d with unsupported role %q", w.Index, w.Role)
}

// Compile builds the prompt for call. Messages with a role other than user or
// assistant are skipped and reported as warnings.
func Compile(call gateway.ChatCall, model string) (string, []Warning) {
	return TemplateFor(model).Compile(call)
}

// Compile builds the prompt for call with t's delimiters.
func (t Template) Compile(call gateway.ChatCall) (string, []Warning) {
	var (
		sb       strings.Builder
		warnings []Warning
	)

	if system := strings.TrimSpace(call.System); system != "" {
		sb.WriteString(t.SystemStart)
		sb.WriteString(system)
		sb.WriteString(t.SystemEnd)
	}

	for i, msg := range call.Messages {
		switch msg.Role {
		case gateway.RoleUser:
			sb.WriteString(t.UserStart)
			sb.WriteString(strings.TrimSpace(msg.Content))
			sb.WriteString(t.UserEnd)
		case gateway.RoleAssistant:
			// a completed turn, replayed into the slot after the user turn
			sb.WriteString(strings.TrimSpace(msg.Content))
		default:
			warnings = append(warnings, Warning{Index: i, Role: msg.Role})
		}
	}

	return sb.String(), warnings
}
