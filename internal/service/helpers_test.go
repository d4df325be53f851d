package service_test

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"safebite/internal/config"
	"safebite/internal/domain"
	"safebite/internal/engine"
	"safebite/internal/port"
)

func testS3Config() config.S3Config {
	return config.S3Config{
		Region:        "us-east-1",
		Bucket:        "test-bucket",
		MaxFileSizeMB: 20,
	}
}

func testResolver(t *testing.T) *engine.Resolver {
	t.Helper()
	r, err := engine.DefaultResolver()
	require.NoError(t, err)
	return r
}

func testEngine(t *testing.T, gw port.ReasoningGateway) *engine.Engine {
	t.Helper()
	return engine.New(engine.Config{GatewayTimeout: 50 * time.Millisecond}, testResolver(t), gw, zap.NewNop())
}

func testAllergen(owner uuid.UUID, name string) domain.Allergen {
	return domain.Allergen{
		ID:            uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
		OwnerID:       owner,
		CanonicalName: name,
	}
}

// createMultipartFile creates a fake multipart file header and content for testing.
func createMultipartFile(filename string, content []byte, contentType string) (multipart.File, *multipart.FileHeader) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, _ := writer.CreatePart(h)
	_, _ = part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content) + 1024))
	file, _ := form.File["file"][0].Open()
	return file, form.File["file"][0]
}

// pdfContent returns minimal valid PDF bytes.
func pdfContent() []byte {
	return []byte("%PDF-1.4 test content that is at least a few bytes long for detection purposes")
}

// pngContent returns minimal valid PNG bytes (magic bytes).
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}
