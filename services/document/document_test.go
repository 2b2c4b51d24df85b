package document

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>Договор № {№} с {НазваниеКонтрагента}</w:t></w:r></w:p></w:body>
</w:document>`

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

func minimalDocx(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"word/document.xml":   documentXML,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := io.WriteString(w, body); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func readDocumentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return string(b)
	}
	t.Fatal("document.xml missing from output")
	return ""
}

func TestRenderFillsPlaceholders(t *testing.T) {
	template := minimalDocx(t)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write(template)
	}))
	defer srv.Close()

	r := NewRenderer(NewHTTPFetcher(5*time.Second), map[Template]string{TemplateContract: srv.URL}, zap.NewNop())
	data := map[string]string{"№": "2", "НазваниеКонтрагента": "ООО Ромашка"}

	for i := 0; i < 2; i++ {
		out, err := r.Render(context.Background(), TemplateContract, data)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		body := readDocumentXML(t, out)
		if !strings.Contains(body, "Договор № 2 с ООО Ромашка") {
			t.Fatalf("placeholders not replaced: %s", body)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("template fetched %d times, want 2", got)
	}
}

func TestMergeDoesNotMutateTemplate(t *testing.T) {
	template := minimalDocx(t)
	orig := append([]byte(nil), template...)
	if _, err := Merge(template, map[string]string{"№": "1"}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !bytes.Equal(orig, template) {
		t.Fatal("template bytes were modified")
	}
}

func TestRenderFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewRenderer(NewHTTPFetcher(5*time.Second), map[Template]string{TemplateTrust: srv.URL}, zap.NewNop())
	_, err := r.Render(context.Background(), TemplateTrust, nil)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Status != http.StatusNotFound {
		t.Fatalf("status: got %d", fe.Status)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := NewRenderer(NewHTTPFetcher(time.Second), nil, zap.NewNop())
	_, err := r.Render(context.Background(), TemplateWaybill, nil)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestRenderMalformedTemplate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("definitely not a zip archive"))
	}))
	defer srv.Close()

	r := NewRenderer(NewHTTPFetcher(5*time.Second), map[Template]string{TemplateAppendix: srv.URL}, zap.NewNop())
	_, err := r.Render(context.Background(), TemplateAppendix, map[string]string{"a": "b"})
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if re.Template != TemplateAppendix {
		t.Fatalf("template: got %s", re.Template)
	}
}
