package sim

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/platform"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	backgroundColor = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	boxColor        = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	clickableColor  = color.RGBA{R: 30, G: 110, B: 220, A: 255}
	checkedColor    = color.RGBA{R: 40, G: 160, B: 80, A: 255}
	textColor       = color.RGBA{R: 20, G: 20, B: 20, A: 255}
)

// Capture implements platform.Screenshotter by drawing the current screen.
func (d *Device) Capture(opts platform.ScreenshotOptions) ([]byte, error) {
	d.mu.Lock()
	roots := cloneNodes(d.roots)
	d.mu.Unlock()
	return platform.EncodeJPEG(Render(roots), opts)
}

// Render draws every node's outline and label. The canvas takes the size
// of the first window root.
func Render(roots []model.Node) *image.RGBA {
	canvas := image.Rect(0, 0, 1080, 2400)
	if len(roots) > 0 && !roots[0].Bounds.Empty() {
		b := roots[0].Bounds
		canvas = image.Rect(0, 0, b.Right, b.Bottom)
	}
	img := image.NewRGBA(canvas)
	draw.Draw(img, canvas, image.NewUniform(backgroundColor), image.Point{}, draw.Src)
	for _, n := range model.Flatten(roots) {
		drawNode(img, n)
	}
	return img
}

func drawNode(img *image.RGBA, n model.FlatNode) {
	c := boxColor
	switch {
	case n.Checked:
		c = checkedColor
	case n.Clickable:
		c = clickableColor
	}
	drawRectangle(img, n.Bounds.Left, n.Bounds.Top, n.Bounds.Right, n.Bounds.Bottom, c)

	label := n.Text
	if n.Password && label != "" {
		label = maskText(label)
	}
	if label == "" {
		label = n.ContentDesc
	}
	if label == "" {
		return
	}
	drawText(img, label, n.Bounds.CenterX(), n.Bounds.CenterY(), textColor)
}

func maskText(s string) string {
	masked := make([]rune, len([]rune(s)))
	for i := range masked {
		masked[i] = '*'
	}
	return string(masked)
}

// drawRectangle draws a rectangle outline clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// drawText centers text on (x, y) using basicfont.Face7x13.
func drawText(img *image.RGBA, text string, x, y int, c color.Color) {
	const charWidth, charHeight = 7, 13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot: fixed.Point26_6{
			X: fixed.I(x - len(text)*charWidth/2),
			Y: fixed.I(y + charHeight/2),
		},
	}
	d.DrawString(text)
}
