package constants

import "strings"

// Source kinds, stored verbatim in the extraction history.
const (
	PDF         = "PDF"
	IMAGE       = "IMAGE"
	UNSUPPORTED = "UNSUPPORTED"
)

// ImageExtensions holds the raster formats handed to the OCR engine.
var ImageExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"bmp":  {},
	"tiff": {},
}

// AllowedExtensions holds every extension the extractor accepts (lowercase, without '.').
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"bmp":  {},
	"tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to PDF, IMAGE or UNSUPPORTED.
func MapExtToFormat(ext string) string {
	ext = NormalizeExt(ext)
	if ext == "pdf" {
		return PDF
	}
	if _, ok := ImageExtensions[ext]; ok {
		return IMAGE
	}
	return UNSUPPORTED
}
