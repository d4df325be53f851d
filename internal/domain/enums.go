package domain

// FileType represents the allowed label file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// DocumentStatus represents the lifecycle of an uploaded label document.
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusUploaded  DocumentStatus = "uploaded"
	DocumentStatusExtracted DocumentStatus = "extracted"
	DocumentStatusFailed    DocumentStatus = "failed"
)

// MatchKind is the basis on which a token was judged to correspond to an allergen.
type MatchKind string

const (
	MatchKindExact    MatchKind = "EXACT"
	MatchKindAlias    MatchKind = "ALIAS"
	MatchKindFuzzy    MatchKind = "FUZZY"
	MatchKindExternal MatchKind = "EXTERNAL"
)

// Priority orders match kinds; higher wins when several kinds hit the same
// token/allergen pair.
func (k MatchKind) Priority() int {
	switch k {
	case MatchKindExact:
		return 3
	case MatchKindAlias:
		return 2
	case MatchKindFuzzy:
		return 1
	default:
		return 0
	}
}

// VerdictLabel is the outcome of a safety check.
type VerdictLabel string

const (
	VerdictSafe      VerdictLabel = "SAFE"
	VerdictUnsafe    VerdictLabel = "UNSAFE"
	VerdictUncertain VerdictLabel = "UNCERTAIN"
)

// ValidVerdictLabels lists all accepted verdict labels.
var ValidVerdictLabels = map[VerdictLabel]bool{
	VerdictSafe:      true,
	VerdictUnsafe:    true,
	VerdictUncertain: true,
}
