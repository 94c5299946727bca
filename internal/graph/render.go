package graph

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultFileName is the image written inside the output directory.
const DefaultFileName = "agent_graph.png"

// DefaultSeed seeds the layout so identical input yields the same picture.
const DefaultSeed = 42

// ErrNoAgents is returned when there is nothing to draw.
var ErrNoAgents = errors.New("no agents found")

// RenderOptions tunes the rendered image. Zero values select defaults.
type RenderOptions struct {
	FileName string
	Seed     uint64
	Updates  int
	Size     vg.Length
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.FileName == "" {
		o.FileName = DefaultFileName
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Updates <= 0 {
		o.Updates = 50
	}
	if o.Size <= 0 {
		o.Size = 20 * vg.Centimeter
	}
	return o
}

// Layout computes node positions with a seeded Eades force-directed
// layout. Positions are keyed by agent name.
func (gr *Graph) Layout(opts RenderOptions) map[string]r2.Vec {
	opts = opts.withDefaults()
	eades := layout.EadesR2{
		Repulsion: 1,
		Rate:      0.05,
		Updates:   opts.Updates,
		Theta:     0.2,
		Src:       rand.NewPCG(opts.Seed, opts.Seed),
	}
	optimizer := layout.NewOptimizerR2(ordered{gr.g}, eades.Update)
	for optimizer.Update() {
	}

	pos := make(map[string]r2.Vec, len(gr.names))
	for id, name := range gr.names {
		pos[name] = optimizer.Coord2(int64(id))
	}
	return pos
}

// Render draws the graph to dir/opts.FileName, creating dir if needed and
// overwriting any earlier image. An empty graph returns ErrNoAgents and
// writes nothing.
func (gr *Graph) Render(dir string, opts RenderOptions) (string, error) {
	if gr.Len() == 0 {
		return "", ErrNoAgents
	}
	opts = opts.withDefaults()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	p := plot.New()
	p.Title.Text = "Agent graph"
	p.HideAxes()
	p.Add(&canvasGraph{gr: gr, pos: gr.Layout(opts)})

	path := filepath.Join(dir, opts.FileName)
	if err := p.Save(opts.Size, opts.Size, path); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}
	return path, nil
}

const nodeRadius = vg.Length(6)

var (
	dependencyColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	connectionColor = color.RGBA{R: 40, G: 90, B: 200, A: 255}
	nodeColor       = color.RGBA{R: 255, G: 190, B: 60, A: 255}
)

// canvasGraph implements plot.Plotter, plot.DataRanger and
// plot.GlyphBoxer for a laid-out agent graph.
type canvasGraph struct {
	gr  *Graph
	pos map[string]r2.Vec
}

func (cg *canvasGraph) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	point := func(name string) vg.Point {
		v := cg.pos[name]
		return vg.Point{X: trX(v.X), Y: trY(v.Y)}
	}

	for _, e := range cg.gr.edges {
		sty := draw.LineStyle{Color: connectionColor, Width: vg.Points(1)}
		if e.Kind == KindDependency {
			sty.Color = dependencyColor
			sty.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		from, to := point(e.From), point(e.To)
		c.StrokeLine2(sty, from.X, from.Y, to.X, to.Y)
		c.FillPolygon(sty.Color, arrowHead(from, to))
	}

	for _, name := range cg.gr.names {
		c.DrawGlyph(draw.GlyphStyle{Color: nodeColor, Radius: nodeRadius, Shape: draw.CircleGlyph{}}, point(name))
	}

	labelStyle := draw.TextStyle{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, 10),
		Handler: plot.DefaultTextHandler,
		XAlign:  draw.XCenter,
		YAlign:  -0.4,
	}
	for _, name := range cg.gr.names {
		pt := point(name)
		pt.Y += nodeRadius + 2
		c.FillText(labelStyle, pt, name)
	}
}

// arrowHead returns a small triangle pointing at to, stopped at the edge
// of the target node.
func arrowHead(from, to vg.Point) []vg.Point {
	dx, dy := float64(to.X-from.X), float64(to.Y-from.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil
	}
	ux, uy := dx/length, dy/length
	const size = 6.0
	tip := vg.Point{X: to.X - vg.Length(ux)*nodeRadius, Y: to.Y - vg.Length(uy)*nodeRadius}
	base := vg.Point{X: tip.X - vg.Length(ux*size), Y: tip.Y - vg.Length(uy*size)}
	px, py := vg.Length(-uy*size/2), vg.Length(ux*size/2)
	return []vg.Point{
		tip,
		{X: base.X + px, Y: base.Y + py},
		{X: base.X - px, Y: base.Y - py},
	}
}

// DataRange returns the layout bounds, widened when all nodes coincide on
// an axis.
func (cg *canvasGraph) DataRange() (xmin, xmax, ymin, ymax float64) {
	xys := make(plotter.XYs, 0, len(cg.pos))
	for _, name := range cg.gr.names {
		v := cg.pos[name]
		xys = append(xys, plotter.XY{X: v.X, Y: v.Y})
	}
	xmin, xmax, ymin, ymax = plotter.XYRange(xys)
	if xmin == xmax {
		xmin, xmax = xmin-1, xmax+1
	}
	if ymin == ymax {
		ymin, ymax = ymin-1, ymax+1
	}
	return xmin, xmax, ymin, ymax
}

// GlyphBoxes reserves room for node glyphs so they are not clipped.
func (cg *canvasGraph) GlyphBoxes(plt *plot.Plot) []plot.GlyphBox {
	boxes := make([]plot.GlyphBox, 0, len(cg.gr.names))
	for _, name := range cg.gr.names {
		v := cg.pos[name]
		boxes = append(boxes, plot.GlyphBox{
			X: plt.X.Norm(v.X),
			Y: plt.Y.Norm(v.Y),
			Rectangle: vg.Rectangle{
				Min: vg.Point{X: -4 * nodeRadius, Y: -nodeRadius},
				Max: vg.Point{X: 4 * nodeRadius, Y: 3 * nodeRadius},
			},
		})
	}
	return boxes
}
