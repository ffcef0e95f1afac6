package bubble

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
)

// Canvas is a fixed-size grid of RGBA pixels.
// Pixels are stored row-major, 4 bytes per pixel, straight alpha.
//
// A Canvas is owned by a single render call and is not safe for concurrent use.
type Canvas struct {
	width  int
	height int
	data   []uint8
}

// NewCanvas creates a new transparent canvas with the given dimensions.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the canvas.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the height of the canvas.
func (c *Canvas) Height() int {
	return c.height
}

// Data returns the raw pixel data.
func (c *Canvas) Data() []uint8 {
	return c.data
}

// SetPixel sets the color of a single pixel. Out-of-bounds writes are ignored.
func (c *Canvas) SetPixel(x, y int, col RGBA) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	i := (y*c.width + x) * 4
	c.data[i+0] = col.R
	c.data[i+1] = col.G
	c.data[i+2] = col.B
	c.data[i+3] = col.A
}

// PixelAt returns the color of a single pixel, or Transparent when out of bounds.
func (c *Canvas) PixelAt(x, y int) RGBA {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return Transparent
	}
	i := (y*c.width + x) * 4
	return RGBA{R: c.data[i+0], G: c.data[i+1], B: c.data[i+2], A: c.data[i+3]}
}

// Clear fills the entire canvas with a color.
func (c *Canvas) Clear(col RGBA) {
	for i := 0; i < len(c.data); i += 4 {
		c.data[i+0] = col.R
		c.data[i+1] = col.G
		c.data[i+2] = col.B
		c.data[i+3] = col.A
	}
}

// FillRect fills the rectangle [x, x+w) × [y, y+h), clipped to the canvas.
func (c *Canvas) FillRect(x, y, w, h int, col RGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(c.Bounds())
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			c.SetPixel(px, py, col)
		}
	}
}

// ToImage copies the canvas into an image.NRGBA.
func (c *Canvas) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.width, c.height))
	copy(img.Pix, c.data)
	return img
}

// EncodePNG writes the canvas as a PNG image.
func (c *Canvas) EncodePNG(w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	return enc.Encode(w, c.ToImage())
}

// SavePNG saves the canvas to a PNG file.
func (c *Canvas) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := c.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// At implements the image.Image interface.
func (c *Canvas) At(x, y int) color.Color {
	return c.PixelAt(x, y).Color()
}

// Set implements the draw.Image interface.
func (c *Canvas) Set(x, y int, col color.Color) {
	c.SetPixel(x, y, FromColor(col))
}

// Bounds implements the image.Image interface.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// ColorModel implements the image.Image interface.
func (c *Canvas) ColorModel() color.Model {
	return color.NRGBAModel
}
