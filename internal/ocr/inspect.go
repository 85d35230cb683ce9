package ocr

import (
	"image"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/image2text/constants"
	"github.com/joseph-ayodele/image2text/internal/common"
)

// FileInfo describes a source file without extracting any text.
type FileInfo struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Size   int64  `json:"size"`
	Pages  int    `json:"pages,omitempty"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// pdfcpu would otherwise install its config files under the user config dir.
var disablePDFCPUConfig = sync.OnceFunc(api.DisableConfigDir)

// Inspect reports kind and size, plus the page count for PDFs or the pixel
// dimensions for images.
func Inspect(path string) (FileInfo, error) {
	src := NewSourceFile(path)
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, common.ExtractionErrorf(common.KindLoadFailure, err, "stat %s", path)
	}
	info := FileInfo{Path: path, Kind: src.Kind, Size: st.Size()}

	switch src.Kind {
	case constants.PDF:
		disablePDFCPUConfig()
		n, err := api.PageCountFile(path)
		if err != nil {
			return info, common.ExtractionErrorf(common.KindLoadFailure, err, "read pdf %s", path)
		}
		info.Pages = n
		info.Format = "pdf"
	case constants.IMAGE:
		f, err := os.Open(path)
		if err != nil {
			return info, common.ExtractionErrorf(common.KindLoadFailure, err, "open image %s", path)
		}
		defer func() { _ = f.Close() }()
		cfg, format, err := image.DecodeConfig(f)
		if err != nil {
			return info, common.ExtractionErrorf(common.KindLoadFailure, err, "decode image header %s", path)
		}
		info.Pages = 1
		info.Format = format
		info.Width, info.Height = cfg.Width, cfg.Height
	default:
		return info, common.ExtractionErrorf(common.KindUnsupportedFormat, nil, "unsupported extension: %q", src.Ext)
	}
	return info, nil
}
