// Package document fills DOCX templates with flat key/value data.
package document

import (
	"bytes"
	"context"
	"fmt"

	"github.com/lukasjarosch/go-docx"
	"go.uber.org/zap"
)

// Template identifies one of the fixed document templates.
type Template string

const (
	TemplateContract Template = "contract"
	TemplateAppendix Template = "appendix"
	TemplateWaybill  Template = "waybill"
	TemplateTrust    Template = "trust"
)

// Fetcher downloads raw bytes by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Renderer merges data into templates fetched fresh on every call.
type Renderer struct {
	fetcher Fetcher
	sources map[Template]string
	logger  *zap.Logger
}

// NewRenderer wires a renderer. sources maps each template to its URL.
func NewRenderer(fetcher Fetcher, sources map[Template]string, logger *zap.Logger) *Renderer {
	return &Renderer{fetcher: fetcher, sources: sources, logger: logger}
}

// Render fetches the template and replaces every {placeholder} with its value.
// Download failures are *FetchError; merge failures are *RenderError.
func (r *Renderer) Render(ctx context.Context, tpl Template, data map[string]string) ([]byte, error) {
	url, ok := r.sources[tpl]
	if !ok || url == "" {
		return nil, &FetchError{URL: string(tpl), Err: fmt.Errorf("no source configured for template %q", tpl)}
	}
	raw, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	out, err := Merge(raw, data)
	if err != nil {
		r.logger.Error("template merge failed", zap.String("document", string(tpl)), zap.Error(err))
		return nil, &RenderError{Template: tpl, Err: err}
	}
	return out, nil
}

// Merge fills a DOCX held in memory. The input slice is never modified.
func Merge(template []byte, data map[string]string) (out []byte, err error) {
	// The zip and XML layers can panic on malformed archives.
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("merge panicked: %v", rec)
		}
	}()

	src := make([]byte, len(template))
	copy(src, template)

	doc, err := docx.OpenBytes(src)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer doc.Close()

	placeholders := make(docx.PlaceholderMap, len(data))
	for k, v := range data {
		placeholders[k] = v
	}
	if err := doc.ReplaceAll(placeholders); err != nil {
		return nil, fmt.Errorf("replace placeholders: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return buf.Bytes(), nil
}
