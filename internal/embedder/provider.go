// internal/embedder/provider.go
package embedder

import "sync"

// Provider resolves model identifiers to encoders. Encoders are built
// lazily and cached for the process lifetime, so repeated requests for
// the same model share one instance.
type Provider struct {
	baseURL string

	mu       sync.Mutex
	encoders map[Model]Encoder
}

// NewProvider creates a Provider backed by an Ollama server
func NewProvider(ollamaURL string) *Provider {
	return &Provider{
		baseURL:  ollamaURL,
		encoders: make(map[Model]Encoder),
	}
}

// Resolve returns the encoder for a model, constructing it on first use.
// Unknown identifiers fail with ErrModelNotFound.
func (p *Provider) Resolve(model Model) (Encoder, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if enc, ok := p.encoders[model]; ok {
		return enc, nil
	}

	enc := NewOllama(p.baseURL, model)
	p.encoders[model] = enc
	return enc, nil
}
