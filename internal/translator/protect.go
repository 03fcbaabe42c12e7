package translator

import (
	"context"

	"github.com/valpere/transqc/internal/placeholder"
)

type protected struct {
	inner Provider
}

// ProtectMarkup wraps p so that markup is replaced with markers on the way
// out and restored on the way back. A translation that lost a marker is
// reported as a ProviderError.
func ProtectMarkup(p Provider) Provider {
	return &protected{inner: p}
}

func (p *protected) Name() string { return p.inner.Name() }

func (p *protected) TranslateBatch(ctx context.Context, texts []string, opts Options) ([]string, error) {
	masked := make([]string, len(texts))
	spans := make([][]string, len(texts))
	for i, t := range texts {
		masked[i], spans[i] = placeholder.Protect(t)
	}

	out, err := p.inner.TranslateBatch(ctx, masked, opts)
	if err != nil {
		return nil, err
	}
	if err := checkCount(p.Name(), len(texts), len(out)); err != nil {
		return nil, err
	}

	for i := range out {
		if missing := placeholder.Missing(out[i], spans[i]); len(missing) > 0 {
			return nil, providerErr(p.Name(), "text %d lost protected spans %v", i, missing)
		}
		out[i] = placeholder.Restore(out[i], spans[i])
	}
	return out, nil
}
