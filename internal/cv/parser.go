package cv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"code.sajari.com/docconv"
)

// ErrNotPDF is returned for buffers that do not carry a PDF header.
var ErrNotPDF = errors.New("not a PDF document")

var pdfMagic = []byte("%PDF-")

type convertFunc func(io.Reader) (string, map[string]string, error)

// Parser turns uploaded PDF buffers into cleaned plain text.
type Parser struct {
	convert convertFunc
}

func NewParser() *Parser {
	return &Parser{convert: docconv.ConvertPDF}
}

// ExtractText converts one PDF held in memory and normalizes the result with CleanText.
func (p *Parser) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic) {
		return "", fmt.Errorf("%s: %w", filename, ErrNotPDF)
	}

	body, _, err := p.convert(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse document %s: %w", filename, err)
	}

	return CleanText(body), nil
}
