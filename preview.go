package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"mixed-route-planner/routing"

	"github.com/paulmach/orb"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Rendered at supersample times the output size, then scaled down.
const supersample = 4

// PreviewOptions configures PNG rendering of a plan.
type PreviewOptions struct {
	Width   int // output width in pixels; height follows the route's aspect ratio
	Padding int
	Caption bool
}

func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{Width: 800, Padding: 30, Caption: true}
}

var (
	previewBackground = color.RGBA{255, 255, 255, 255}
	previewObstacle   = color.RGBA{224, 224, 224, 255}
	previewRoute      = color.RGBA{21, 101, 192, 255}
	previewMeander    = color.RGBA{230, 81, 0, 255}
	previewPin        = color.RGBA{46, 125, 50, 255}
	previewText       = color.RGBA{51, 51, 51, 255}
)

// previewCanvas maps route millimetres onto a supersampled image.
type previewCanvas struct {
	img    *image.RGBA
	ras    *vector.Rasterizer
	bound  orb.Bound
	scale  float64 // pixels per mm
	pad    float64
	height float64
}

func (c *previewCanvas) project(p orb.Point) (float32, float32) {
	x := c.pad + (p[0]-c.bound.Min[0])*c.scale
	y := c.height - c.pad - (p[1]-c.bound.Min[1])*c.scale
	return float32(x), float32(y)
}

func (c *previewCanvas) fillRings(rings []orb.Ring, fill color.Color) {
	paths := make([][]orb.Point, 0, len(rings))
	for _, ring := range rings {
		path := make([]orb.Point, len(ring))
		for i, p := range ring {
			x, y := c.project(p)
			path[i] = orb.Point{float64(x), float64(y)}
		}
		paths = append(paths, path)
	}
	c.fillPaths(paths, fill)
}

// fillPaths fills closed pixel-space paths in a single rasterizer pass. Paths
// are wound the same way so overlaps never cancel out.
func (c *previewCanvas) fillPaths(paths [][]orb.Point, fill color.Color) {
	c.ras.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	c.ras.DrawOp = draw.Over

	drawn := 0
	for _, path := range paths {
		if len(path) < 3 {
			continue
		}
		if signedArea(path) < 0 {
			path = reversed(path)
		}
		c.ras.MoveTo(float32(path[0][0]), float32(path[0][1]))
		for _, p := range path[1:] {
			c.ras.LineTo(float32(p[0]), float32(p[1]))
		}
		c.ras.ClosePath()
		drawn++
	}
	if drawn == 0 {
		return
	}
	c.ras.Draw(c.img, c.img.Bounds(), image.NewUniform(fill), image.Point{})
}

func signedArea(path []orb.Point) float64 {
	area := 0.0
	for i := range path {
		a, b := path[i], path[(i+1)%len(path)]
		area += a[0]*b[1] - b[0]*a[1]
	}
	return area / 2
}

func reversed(path []orb.Point) []orb.Point {
	out := make([]orb.Point, len(path))
	for i, p := range path {
		out[len(path)-1-i] = p
	}
	return out
}

// strokeLines draws every hop of every line as a quad of the given pixel width.
func (c *previewCanvas) strokeLines(lines [][]routing.Point, width float64, stroke color.Color) {
	half := width / 2
	var quads [][]orb.Point
	for _, points := range lines {
		for i := 1; i < len(points); i++ {
			ax, ay := c.project(points[i-1].Orb())
			bx, by := c.project(points[i].Orb())
			a := orb.Point{float64(ax), float64(ay)}
			b := orb.Point{float64(bx), float64(by)}
			n := math.Hypot(b[0]-a[0], b[1]-a[1])
			if n == 0 {
				continue
			}
			// Extended by half a width so joints overlap.
			ux, uy := (b[0]-a[0])/n*half, (b[1]-a[1])/n*half
			px, py := -uy, ux

			quads = append(quads, []orb.Point{
				{a[0] - ux + px, a[1] - uy + py},
				{b[0] + ux + px, b[1] + uy + py},
				{b[0] + ux - px, b[1] + uy - py},
				{a[0] - ux - px, a[1] - uy - py},
			})
		}
	}
	c.fillPaths(quads, stroke)
}

func (c *previewCanvas) dots(points []routing.Point, radius float64, fill color.Color) {
	paths := make([][]orb.Point, 0, len(points))
	for _, p := range points {
		x, y := c.project(p.Orb())
		path := make([]orb.Point, 0, 16)
		for k := 0; k < 16; k++ {
			a := 2 * math.Pi * float64(k) / 16
			path = append(path, orb.Point{float64(x) + radius*math.Cos(a), float64(y) + radius*math.Sin(a)})
		}
		paths = append(paths, path)
	}
	c.fillPaths(paths, fill)
}

func (c *previewCanvas) caption(text string, size float64) error {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return fmt.Errorf("font face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(previewText),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(int(c.pad / 2)), Y: fixed.I(int(c.pad/2) + face.Metrics().Ascent.Ceil())},
	}
	d.DrawString(text)
	return nil
}

// planBound covers the route and every obstacle, never zero-sized.
func planBound(plan *routing.RoutePlan, obstacles []routing.Obstacle) orb.Bound {
	b := routing.LineString(plan.Points).Bound()
	for _, o := range obstacles {
		b = b.Union(o.Bound())
	}
	if b.Right()-b.Left() == 0 {
		b = b.Pad(0.5)
	}
	if b.Top()-b.Bottom() == 0 {
		b = b.Pad(0.5)
	}
	return b
}

// RenderPreview draws the plan and its obstacles as a PNG.
func RenderPreview(w io.Writer, plan *routing.RoutePlan, obstacles []routing.Obstacle, opts PreviewOptions) error {
	if opts.Width <= 0 {
		opts.Width = DefaultPreviewOptions().Width
	}
	if opts.Padding < 0 || 2*opts.Padding >= opts.Width {
		opts.Padding = opts.Width / 10
	}
	if len(plan.Points) < 2 {
		return fmt.Errorf("preview needs at least two points: %w", routing.ErrDegenerateRoute)
	}

	bound := planBound(plan, obstacles)
	spanX, spanY := bound.Right()-bound.Left(), bound.Top()-bound.Bottom()
	inner := float64(opts.Width - 2*opts.Padding)
	// Tall routes are fitted into a canvas at most twice as high as it is wide.
	scale := math.Min(inner/spanX, 2*inner/spanY)
	height := int(math.Ceil(spanY*scale)) + 2*opts.Padding

	largeW, largeH := opts.Width*supersample, height*supersample
	canvas := &previewCanvas{
		img:    image.NewRGBA(image.Rect(0, 0, largeW, largeH)),
		ras:    vector.NewRasterizer(largeW, largeH),
		bound:  bound,
		scale:  scale * supersample,
		pad:    float64(opts.Padding * supersample),
		height: float64(largeH),
	}
	draw.Draw(canvas.img, canvas.img.Bounds(), image.NewUniform(previewBackground), image.Point{}, draw.Src)

	rings := make([]orb.Ring, 0, len(obstacles))
	for _, o := range obstacles {
		rings = append(rings, o.Ring)
	}
	canvas.fillRings(rings, previewObstacle)

	line := float64(2 * supersample)
	canvas.strokeLines([][]routing.Point{plan.Points}, line, previewRoute)
	var meanders [][]routing.Point
	for _, seg := range plan.Segments {
		if seg.Strategy == routing.Meandered {
			meanders = append(meanders, append([]routing.Point{seg.From}, seg.Points()...))
		}
	}
	canvas.strokeLines(meanders, line, previewMeander)
	canvas.dots([]routing.Point{plan.Points[0], plan.Points[len(plan.Points)-1]}, 3*line, previewPin)

	if opts.Caption {
		text := fmt.Sprintf("length %.4f mm", plan.Length)
		if plan.Budget.Active {
			text += fmt.Sprintf(" / requested %.4f mm", plan.Requested)
		}
		if err := canvas.caption(text, float64(12*supersample)); err != nil {
			return err
		}
	}

	final := image.NewRGBA(image.Rect(0, 0, opts.Width, height))
	draw.CatmullRom.Scale(final, final.Bounds(), canvas.img, canvas.img.Bounds(), draw.Over, nil)

	return png.Encode(w, final)
}
