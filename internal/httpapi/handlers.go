package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	docgen "github.com/alnah/go-docgen"
)

// DocumentGenerator is the generation surface the handlers depend on.
type DocumentGenerator interface {
	Generate(ctx context.Context, req docgen.Request) (*docgen.Document, error)
	GenerateStream(ctx context.Context, req docgen.Request) (*docgen.DocumentStream, error)
	Templates() []docgen.TemplateDefinition
}

var _ DocumentGenerator = (*docgen.Generator)(nil)

const (
	cacheControl = "private, max-age=0, must-revalidate"
	serviceName  = "documents"
)

// templateVersionJSON and templateJSON shape the catalog listing.
type templateVersionJSON struct {
	Version     string `json:"version"`
	Description string `json:"description"`
}

type templateJSON struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Description    string                `json:"description"`
	DefaultVersion string                `json:"defaultVersion"`
	Versions       []templateVersionJSON `json:"versions"`
}

type templatesResponse struct {
	Templates []templateJSON `json:"templates"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	stream, err := parseStream(r.URL.Query().Get("stream"))
	if err != nil {
		writeError(w, http.StatusBadRequest, []string{err.Error()})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	req, err := decodeRequest(r.Body)
	if err != nil {
		var verr *validationError
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.messages)
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge,
				[]string{fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)})
		default:
			writeError(w, http.StatusBadRequest, []string{err.Error()})
		}
		return
	}

	if !stream {
		doc, err := s.gen.Generate(r.Context(), req)
		if err != nil {
			s.writeGenerateError(w, r, err)
			return
		}
		setDocumentHeaders(w, doc.MIMEType, doc.FileName, int64(len(doc.Content)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc.Content)
		return
	}

	ds, err := s.gen.GenerateStream(r.Context(), req)
	if err != nil {
		s.writeGenerateError(w, r, err)
		return
	}
	defer func() { _ = ds.Body.Close() }()

	setDocumentHeaders(w, ds.MIMEType, ds.FileName, ds.Size)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, ds.Body); err != nil {
		// Headers are gone; the client sees a truncated body.
		s.logger.Warn("stream copy failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
	}
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	defs := s.gen.Templates()
	out := templatesResponse{Templates: make([]templateJSON, 0, len(defs))}
	for _, d := range defs {
		t := templateJSON{
			ID:             d.ID,
			Name:           d.Name,
			Description:    d.Description,
			DefaultVersion: d.DefaultVersion,
			Versions:       make([]templateVersionJSON, 0, len(d.Versions)),
		}
		for _, v := range d.Versions {
			t.Versions = append(t.Versions, templateVersionJSON{Version: v.Version, Description: v.Description})
		}
		out.Templates = append(out.Templates, t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Service:   serviceName,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

func setDocumentHeaders(w http.ResponseWriter, mimeType, fileName string, size int64) {
	h := w.Header()
	h.Set("Content-Type", mimeType)
	h.Set("Content-Disposition", contentDisposition(fileName))
	h.Set("Cache-Control", cacheControl)
	if size >= 0 {
		h.Set("Content-Length", strconv.FormatInt(size, 10))
	}
}

// contentDisposition quotes the file name for an attachment header.
func contentDisposition(fileName string) string {
	return "attachment; filename=" + strconv.Quote(fileName)
}

// parseStream defaults to streaming when the parameter is absent.
func parseStream(v string) (bool, error) {
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("stream must be a boolean, got %q", v)
	}
	return b, nil
}
