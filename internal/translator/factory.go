package translator

import "fmt"

// Kind selects a provider implementation.
type Kind string

const (
	KindGoogle   Kind = "google"
	KindSystran  Kind = "systran"
	KindMyMemory Kind = "mymemory"
	KindOllama   Kind = "ollama"
	KindOpenAI   Kind = "openai"
)

func (k Kind) Valid() bool {
	switch k {
	case KindGoogle, KindSystran, KindMyMemory, KindOllama, KindOpenAI:
		return true
	}
	return false
}

// New builds the provider for kind. name is only used by kinds that can run
// more than once (OpenAI-compatible endpoints); the others have fixed names.
func New(kind Kind, name string, cfg ServiceConfig) (Provider, error) {
	var p Provider
	switch kind {
	case KindGoogle:
		p = NewGoogleService(cfg)
	case KindSystran:
		p = NewSystranService(cfg)
	case KindMyMemory:
		p = NewMyMemoryService(cfg)
	case KindOllama:
		p = NewOllamaTranslator(cfg)
	case KindOpenAI:
		p = NewOpenAIService(name, cfg)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", kind)
	}

	if cfg.ProtectMarkup {
		p = ProtectMarkup(p)
	}
	return p, nil
}
