package ocr

import (
	"image"
	_ "image/jpeg" // register decoders
	_ "image/png"
	"io"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/joseph-ayodele/image2text/constants"
	"github.com/joseph-ayodele/image2text/internal/common"
)

// Handwriting preprocessing parameters.
const (
	blurKernel    = 5  // smoothing neighbourhood
	adaptiveBlock = 11 // neighbourhood for the per-pixel threshold
	adaptiveC     = 2  // subtracted from the weighted mean
)

// DecodeImage decodes PNG, JPEG, BMP or TIFF data.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, common.NewExtractionError(common.KindLoadFailure, "decode image", err)
	}
	return img, nil
}

// DecodeImageFile opens and decodes the image at path.
func DecodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.ExtractionErrorf(common.KindLoadFailure, err, "open image %s", path)
	}
	defer func() { _ = f.Close() }()
	return DecodeImage(f)
}

// PrepareFile decodes the image at path and binarizes it for mode.
func PrepareFile(path string, mode constants.Mode) (*image.Gray, error) {
	img, err := DecodeImageFile(path)
	if err != nil {
		return nil, err
	}
	return Prepare(img, mode)
}

// Prepare converts img to grayscale and binarizes it for mode.
//
// Printed text gets a single Otsu threshold: dark ink -> 0, paper -> 255.
// Handwriting gets a 5x5 Gaussian blur followed by an inverted Gaussian
// adaptive threshold, so ink -> 255 and paper -> 0 even under uneven lighting.
func Prepare(img image.Image, mode constants.Mode) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, common.NewExtractionError(common.KindLoadFailure, "empty image", nil)
	}
	gray := toGray(img)
	if mode == constants.ModeHandwriting {
		return adaptiveThresholdInv(gaussianBlur(gray, blurKernel), adaptiveBlock, adaptiveC), nil
	}
	return thresholdBinary(gray, otsuThreshold(gray)), nil
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// otsuThreshold picks the gray level that maximises between-class variance,
// equivalently minimising the intra-class variance of the two classes.
func otsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for _, v := range row {
			hist[v]++
		}
	}
	total := w * h

	var sum float64
	for i, c := range hist {
		sum += float64(i * c)
	}

	var (
		sumB   float64
		wB     int
		best   float64
		thresh int
	)
	for i := 0; i < 256; i++ {
		wB += hist[i]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(i * hist[i])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			thresh = i
		}
	}
	return uint8(thresh)
}

// thresholdBinary maps v > t to 255 and everything else to 0.
func thresholdBinary(g *image.Gray, t uint8) *image.Gray {
	out := image.NewGray(g.Rect)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := 0; y < h; y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range src {
			if v > t {
				dst[x] = 255
			}
		}
	}
	return out
}

func gaussianBlur(g *image.Gray, size int) *image.Gray {
	plane := gaussianSmooth(g, size)
	out := image.NewGray(g.Rect)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = clampByte(plane[y*w+x])
		}
	}
	return out
}

// adaptiveThresholdInv compares every pixel with the Gaussian-weighted mean of
// its block x block neighbourhood: v > mean-c -> 0, otherwise 255.
func adaptiveThresholdInv(g *image.Gray, block int, c float64) *image.Gray {
	mean := gaussianSmooth(g, block)
	out := image.NewGray(g.Rect)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if float64(g.Pix[y*g.Stride+x]) <= mean[y*w+x]-c {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// gaussianSmooth runs a separable Gaussian filter and returns a w*h float plane.
// Borders are mirrored without repeating the edge pixel.
func gaussianSmooth(g *image.Gray, size int) []float64 {
	k := gaussianKernel(size)
	half := size / 2
	w, h := g.Rect.Dx(), g.Rect.Dy()

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x := 0; x < w; x++ {
			var acc float64
			for i, kv := range k {
				acc += kv * float64(row[reflect101(x+i-half, w)])
			}
			tmp[y*w+x] = acc
		}
	}

	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for i, kv := range k {
				acc += kv * tmp[reflect101(y+i-half, h)*w+x]
			}
			out[y*w+x] = acc
		}
	}
	return out
}

// smallGaussian holds the fixed kernels OpenCV uses for odd sizes up to 7
// when no sigma is given.
var smallGaussian = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// gaussianKernel returns the 1-D kernel OpenCV builds for size with sigma 0:
// the fixed table for small sizes, otherwise sigma derived from size.
func gaussianKernel(size int) []float64 {
	if tab, ok := smallGaussian[size]; ok {
		return append([]float64(nil), tab...)
	}
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	half := size / 2
	k := make([]float64, size)
	var sum float64
	for i := range k {
		x := float64(i - half)
		k[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
