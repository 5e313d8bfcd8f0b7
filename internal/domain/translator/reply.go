package translator

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// fallbackKeywords are returned when the model reply is not valid JSON.
// The list has three entries whatever KeywordCount is set to.
var fallbackKeywords = []string{"翻译", "内容", "结果"}

// cleanReply strips a markdown code fence wrapped around the model reply.
func cleanReply(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// parseReply decodes a cleaned reply. Missing fields default to empty values.
func parseReply(cleaned string) (Response, error) {
	data := []byte(cleaned)
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return Response{}, errors.New("reply is null")
	}

	var raw struct {
		Translation string          `json:"translation"`
		Keywords    json.RawMessage `json:"keywords"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Response{}, err
	}

	keywords, err := coerceStringArray(raw.Keywords)
	if err != nil {
		return Response{}, err
	}
	if keywords == nil {
		keywords = []string{}
	}
	return Response{Translation: raw.Translation, Keywords: keywords}, nil
}

// degradedReply keeps the raw text when the reply could not be parsed.
func degradedReply(cleaned string) Response {
	keywords := make([]string, len(fallbackKeywords))
	copy(keywords, fallbackKeywords)
	return Response{Translation: cleaned, Keywords: keywords}
}

func coerceStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		if strings.TrimSpace(single) == "" {
			return nil, nil
		}
		return []string{single}, nil
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	default:
		return nil, errors.New("unsupported keywords format")
	}
}
