package filetype

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// FileTypeInfo contains detected file type information
type FileTypeInfo struct {
	MIMEType    string
	Extension   string
	Supported   bool
	Description string
}

// Detector handles file type detection using magic bytes
type Detector struct{}

// New creates a new file type detector
func New() *Detector {
	return &Detector{}
}

// Detect detects the actual file type using magic bytes, not filename
func (d *Detector) Detect(filePath string) (*FileTypeInfo, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}

	info := &FileTypeInfo{
		MIMEType:  mtype.String(),
		Extension: mtype.Extension(),
	}

	switch info.MIMEType {
	case "application/pdf":
		info.Supported = true
		info.Description = "PDF document"
	case "image/png", "image/jpeg", "image/tiff":
		// Raster scans without a PDF container are not accepted; the
		// pipeline needs page boundaries from the PDF itself.
		info.Description = "raster image (wrap pages in a PDF first)"
	default:
		info.Description = "unsupported input"
	}

	log.Debug().Str("mime", info.MIMEType).Str("ext", info.Extension).Str("file", filePath).Msg("detected file type")
	return info, nil
}

// RequirePDF returns an error unless the file at filePath is a real PDF.
func (d *Detector) RequirePDF(filePath string) error {
	info, err := d.Detect(filePath)
	if err != nil {
		return err
	}
	if !info.Supported {
		return fmt.Errorf("input %s is %s (%s), expected a PDF", filePath, info.MIMEType, info.Description)
	}
	return nil
}
