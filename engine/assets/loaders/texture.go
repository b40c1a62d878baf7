package loaders

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageExtensions lists the file extensions the texture loader decodes, in
// lookup order.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

/**
 * @brief Decodes an image into tightly packed RGBA8 rows. params may be a
 * *metadata.ImageResourceParams; without one the image is flipped so the
 * first row is the bottom one, as the device samples it.
 */
type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	flip := true
	if p, ok := params.(*metadata.ImageResourceParams); ok && p != nil {
		flip = p.FlipY
	}

	// Open and decode the texture image file
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}

	data := DecodeRGBA(img, flip)
	return &metadata.Resource{
		FullPath: path,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

// DecodeRGBA converts any image to RGBA8, optionally flipping it vertically.
func DecodeRGBA(img image.Image, flipY bool) *metadata.ImageResourceData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	width := bounds.Dx()
	height := bounds.Dy()
	rowBytes := width * 4
	pixels := make([]uint8, rowBytes*height)
	for y := 0; y < height; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+rowBytes]
		dstRow := y
		if flipY {
			dstRow = height - 1 - y
		}
		copy(pixels[dstRow*rowBytes:(dstRow+1)*rowBytes], src)
	}

	return &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        uint32(width),
		Height:       uint32(height),
		Pixels:       pixels,
	}
}

func (tl *TextureLoader) Unload(*metadata.Resource) error {
	return nil
}
