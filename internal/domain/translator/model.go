package translator

// Config configures prompt construction and sampling.
type Config struct {
	Model        string
	Temperature  float32
	MaxTokens    int
	KeywordCount int
	SystemPrompt string
}

// Request represents the incoming translation payload.
type Request struct {
	Text string `json:"text"`
}

// Response is returned by the translate endpoint.
type Response struct {
	Translation string   `json:"translation"`
	Keywords    []string `json:"keywords"`
}
