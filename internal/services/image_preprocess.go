package services

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/disintegration/imaging"
)

const (
	thresholdBlurSigma = 5.0
	thresholdOffset    = 12
)

func preprocessImageFile(src, dst string, scale float64) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open page image: %w", err)
	}

	out := preprocessForOCR(img, scale)
	if err := imaging.Save(out, dst); err != nil {
		return fmt.Errorf("failed to save preprocessed image: %w", err)
	}
	return nil
}

// preprocessForOCR converts a page to a binarized, upscaled image: grayscale, cubic upscale,
// 3x3 median denoise, then a local-mean adaptive threshold.
func preprocessForOCR(img image.Image, scale float64) *image.Gray {
	gray := imaging.Grayscale(img)

	b := gray.Bounds()
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	if w > 0 && h > 0 && scale != 1 {
		gray = imaging.Resize(gray, w, h, imaging.CatmullRom)
	}

	denoised := medianFilter3(toGray(gray))
	mean := toGray(imaging.Blur(denoised, thresholdBlurSigma))

	return adaptiveThreshold(denoised, mean, thresholdOffset)
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return out
}

// medianFilter3 applies a 3x3 median filter with replicated edges.
func medianFilter3(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	clamp := func(v, hi int) int {
		if v < 0 {
			return 0
		}
		if v >= hi {
			return hi - 1
		}
		return v
	}

	window := make([]uint8, 0, 9)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			window = window[:0]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					window = append(window, src.GrayAt(b.Min.X+clamp(x+dx, w), b.Min.Y+clamp(y+dy, h)).Y)
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			out.SetGray(x, y, color.Gray{Y: window[4]})
		}
	}
	return out
}

// adaptiveThreshold sets a pixel white when it is brighter than its local mean minus offset.
func adaptiveThreshold(src, mean *image.Gray, offset int) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := int(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			m := int(mean.GrayAt(mean.Bounds().Min.X+x, mean.Bounds().Min.Y+y).Y)
			if v > m-offset {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}
