package embedding

// ONNXOptions describes an exported sentence-transformer model.
type ONNXOptions struct {
	ModelPath string
	// VocabPath is the model's WordPiece vocab.txt. Without it token ids are
	// hashed, which only matches models trained on that scheme.
	VocabPath  string
	Dimensions int
	MaxTokens  int
	// OutputName is the graph output to read. Defaults to "last_hidden_state".
	OutputName string
	// Pooled is set when the output is already a [1, dims] sentence embedding
	// rather than per-token hidden states that need mean pooling.
	Pooled bool
}

func (o *ONNXOptions) applyDefaults() {
	if o.Dimensions <= 0 {
		o.Dimensions = 384
	}
	if o.MaxTokens < 2 {
		o.MaxTokens = 256
	}
	if o.OutputName == "" {
		o.OutputName = "last_hidden_state"
	}
}
