package exports

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// InspectPDF parses rendered bytes and returns the page count. Output that
// does not parse or has no pages is an error.
func InspectPDF(data []byte) (pages int, err error) {
	if len(data) == 0 {
		return 0, errors.New("empty pdf")
	}
	// The parser panics on some truncated inputs.
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("parse pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	pages = reader.NumPage()
	if pages < 1 {
		return 0, errors.New("pdf has no pages")
	}
	return pages, nil
}
