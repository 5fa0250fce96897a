package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/mind-engage/quizparse/internal/audit"
	authmw "github.com/mind-engage/quizparse/internal/auth/middleware"
	"github.com/mind-engage/quizparse/internal/extract"
	"github.com/mind-engage/quizparse/internal/quiz"
	"github.com/mind-engage/quizparse/internal/storage"
)

// TextExtractor is satisfied by *extract.Extractor.
type TextExtractor interface {
	Extract(ctx context.Context, path string, kind extract.Kind) (string, error)
}

// ParseRecorder is satisfied by *audit.EventRepo.
type ParseRecorder interface {
	RecordParse(ctx context.Context, subject string, out audit.ParseOutcome) error
}

type uploadResponse struct {
	Questions []quiz.Question   `json:"questions"`
	Dropped   []quiz.Diagnostic `json:"dropped,omitempty"`
}

const unsupportedDetail = "Invalid file format. Only .docx, .pdf and .txt supported."

// POST /upload (multipart: file=<quiz document>) [?diagnostics=1]
func UploadHandler(x TextExtractor, sp storage.Spool, rec ParseRecorder, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeDetail(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeDetail(w, http.StatusBadRequest, "file required")
			return
		}
		defer f.Close()

		subject := authmw.SubjectFromContext(r.Context())
		outcome := audit.ParseOutcome{Filename: hdr.Filename}
		record := func() {
			if rec == nil {
				return
			}
			if err := rec.RecordParse(context.WithoutCancel(r.Context()), subject, outcome); err != nil {
				log.Printf("audit: record parse of %q: %v", hdr.Filename, err)
			}
		}

		kind, err := extract.Detect(hdr.Filename)
		if err != nil {
			outcome.Error = err.Error()
			record()
			writeDetail(w, http.StatusBadRequest, unsupportedDetail)
			return
		}
		outcome.Kind = string(kind)

		key := storage.UploadKey(hdr.Filename)
		path, err := sp.Put(key, f)
		if err != nil {
			log.Printf("spool %q: %v", hdr.Filename, err)
			outcome.Error = "spool: " + err.Error()
			record()
			writeDetail(w, http.StatusInternalServerError, "could not store upload")
			return
		}
		defer func() {
			if err := sp.Remove(key); err != nil {
				log.Printf("spool remove %s: %v", key, err)
			}
		}()

		text, err := x.Extract(r.Context(), path, kind)
		if err != nil {
			log.Printf("extract %q for %s: %v", hdr.Filename, subject, err)
			outcome.Error = err.Error()
			record()
			writeDetail(w, http.StatusInternalServerError, "extraction failed: could not read "+kindLabel(kind)+" file")
			return
		}

		rep := quiz.ParseReport(text)
		outcome.Questions = len(rep.Questions)
		outcome.Dropped = len(rep.Dropped)
		record()

		resp := uploadResponse{Questions: rep.Questions}
		if wantsDiagnostics(r) {
			resp.Dropped = rep.Dropped
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func wantsDiagnostics(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("diagnostics")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func kindLabel(k extract.Kind) string {
	return strings.ToUpper(string(k))
}
