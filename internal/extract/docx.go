package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxBodyPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// DocxReader emits one line per body paragraph of a Word document.
// Paragraphs inside tables are not part of the body flow and are skipped.
type DocxReader struct{}

func (DocxReader) Read(ctx context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxBodyPart, err)
		}
		defer rc.Close()
		paras, err := docxParagraphs(ctx, rc)
		if err != nil {
			return "", err
		}
		return strings.Join(paras, "\n"), nil
	}
	return "", fmt.Errorf("docx: missing %s", docxBodyPart)
}

func docxParagraphs(ctx context.Context, r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		paras      []string
		cur        strings.Builder
		paraDepth  int
		tableDepth int
		inRun      bool
		inText     bool
	)
	// only text of top-level body paragraphs counts; text boxes nest w:p inside w:p
	top := func() bool { return paraDepth == 1 && tableDepth == 0 }
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				paraDepth++
				if top() {
					cur.Reset()
				}
			case "r":
				inRun = true
			case "t":
				inText = inRun && top()
			case "tab":
				if inRun && top() {
					cur.WriteByte('\t')
				}
			case "br", "cr":
				if inRun && top() {
					cur.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tableDepth--
			case "p":
				if top() {
					paras = append(paras, cur.String())
				}
				paraDepth--
			case "r":
				inRun = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return paras, nil
}
