package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DocxExtractor pulls the raw text out of a Word document. A .docx file is a
// zip archive whose word/document.xml holds the text in w:t runs; each
// closed paragraph becomes a newline.
type DocxExtractor struct{}

func (DocxExtractor) ExtractText(_ context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filename, err)
	}

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		doc, err := file.Open()
		if err != nil {
			return "", err
		}
		defer doc.Close()
		return extractRuns(doc)
	}
	return "", fmt.Errorf("%s: no word/document.xml in archive", filename)
}

func extractRuns(doc io.Reader) (string, error) {
	var (
		text    strings.Builder
		decoder = xml.NewDecoder(doc)
		inRun   bool
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				text.WriteString("\n")
			}
		case xml.CharData:
			if inRun {
				text.Write(t)
			}
		}
	}
	return text.String(), nil
}
