package port

import "context"

// ExtractInput carries a label file for text extraction.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
}

// TextExtractor turns an uploaded label image or PDF into raw text.
type TextExtractor interface {
	ExtractText(ctx context.Context, input ExtractInput) (string, error)
}
