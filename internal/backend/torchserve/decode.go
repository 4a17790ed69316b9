package torchserve

import (
	torchserve "github.com/danilofalcao/torchserve-gateway/internal/api/torchserve/v1"
	"github.com/danilofalcao/torchserve-gateway/internal/backend/util"
	"github.com/pkg/errors"
	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
)

// decodeGeneratedText accepts relaxed JSON (comments, trailing commas) holding
// either a generation object or a batch list whose first element is one.
func decodeGeneratedText(body []byte) (*torchserve.GeneratedText, error) {
	std, err := hujson.Standardize(body)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing prediction body")
	}

	result := gjson.ParseBytes(std)
	if result.IsArray() {
		result = result.Get("0")
	}
	if !result.IsObject() {
		return nil, errors.Errorf("unexpected prediction body shape: %s", util.TruncateString(string(std), 128))
	}

	text := result.Get("generated_text")
	if text.Exists() && text.Type != gjson.String && text.Type != gjson.Null {
		return nil, errors.Errorf("generated_text is %s, not a string", text.Type)
	}
	return &torchserve.GeneratedText{GeneratedText: text.String()}, nil
}
