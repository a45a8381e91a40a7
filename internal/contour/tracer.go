package contour

import (
	"fmt"
	"image"

	"cpdh-retrieval/pkg/geometry"
)

// ImageTracer traces silhouettes in pure Go. Only the outer boundary of
// each shape is returned; holes, and shapes lying inside holes, are ignored.
type ImageTracer struct {
	threshold uint8
}

// NewTracer creates a tracer that binarises images at threshold.
func NewTracer(threshold uint8) *ImageTracer {
	return &ImageTracer{threshold: threshold}
}

// Trace implements Tracer.
func (t *ImageTracer) Trace(path string) ([]geometry.PointInt, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	pts, err := t.TraceImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pts, nil
}

// TraceImage returns the concatenated outer boundaries of the shapes in img.
func (t *ImageTracer) TraceImage(img image.Image) ([]geometry.PointInt, error) {
	var pts []geometry.PointInt
	for _, c := range Boundaries(NewMask(img, t.threshold)) {
		pts = append(pts, c...)
	}
	if len(pts) == 0 {
		return nil, ErrNoContour
	}
	return pts, nil
}

// Boundaries returns the outer boundary of every 8-connected shape in m
// that is not enclosed by another shape, in raster order of their top-left
// pixel.
func Boundaries(m *Mask) [][]geometry.PointInt {
	labels, starts := label(m)
	outside := outsideRegion(m)

	external := make([]bool, len(starts)+1)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			l := labels[y*m.W+x]
			if l == 0 || external[l] {
				continue
			}
			if x == 0 || y == 0 || x == m.W-1 || y == m.H-1 ||
				outside[y*m.W+x-1] || outside[y*m.W+x+1] ||
				outside[(y-1)*m.W+x] || outside[(y+1)*m.W+x] {
				external[l] = true
			}
		}
	}

	var out [][]geometry.PointInt
	for i, s := range starts {
		if external[i+1] {
			out = append(out, traceMoore(labels, m.W, m.H, i+1, s))
		}
	}
	return out
}

// label assigns 8-connected components of m ids starting at 1 and returns
// the first pixel of each in raster order.
func label(m *Mask) ([]int, []image.Point) {
	labels := make([]int, m.W*m.H)
	var starts []image.Point
	var stack []image.Point

	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.Pix[y*m.W+x] || labels[y*m.W+x] != 0 {
				continue
			}
			id := len(starts) + 1
			starts = append(starts, image.Point{X: x, Y: y})
			labels[y*m.W+x] = id
			stack = append(stack[:0], image.Point{X: x, Y: y})

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, d := range neighbours {
					nx, ny := p.X+d.X, p.Y+d.Y
					if m.At(nx, ny) && labels[ny*m.W+nx] == 0 {
						labels[ny*m.W+nx] = id
						stack = append(stack, image.Point{X: nx, Y: ny})
					}
				}
			}
		}
	}
	return labels, starts
}

// outsideRegion marks the background pixels 4-connected to the image border.
func outsideRegion(m *Mask) []bool {
	outside := make([]bool, m.W*m.H)
	var stack []image.Point
	push := func(x, y int) {
		if x < 0 || y < 0 || x >= m.W || y >= m.H {
			return
		}
		i := y*m.W + x
		if m.Pix[i] || outside[i] {
			return
		}
		outside[i] = true
		stack = append(stack, image.Point{X: x, Y: y})
	}

	for x := 0; x < m.W; x++ {
		push(x, 0)
		push(x, m.H-1)
	}
	for y := 0; y < m.H; y++ {
		push(0, y)
		push(m.W-1, y)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}
	return outside
}

// neighbours lists the Moore neighbourhood clockwise on screen, starting east.
var neighbours = [8]image.Point{
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
}

func direction(d image.Point) int {
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return 0
}

// traceMoore follows the boundary of component id clockwise from start,
// its top-left pixel. Tracing stops when the first move out of start is
// about to be repeated; start is not repeated at the end.
func traceMoore(labels []int, w, h, id int, start image.Point) []geometry.PointInt {
	in := func(p image.Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && labels[p.Y*w+p.X] == id
	}

	// step scans the neighbours of cur clockwise from back and returns the
	// first pixel of the component, with the background pixel scanned just
	// before it as the new back.
	step := func(cur, back image.Point) (image.Point, image.Point, bool) {
		first := direction(back.Sub(cur))
		prev := back
		for k := 1; k <= 8; k++ {
			n := cur.Add(neighbours[(first+k)%8])
			if in(n) {
				return n, prev, true
			}
			prev = n
		}
		return image.Point{}, image.Point{}, false
	}

	pts := []geometry.PointInt{{X: start.X, Y: start.Y}}
	cur := start
	back := image.Point{X: start.X - 1, Y: start.Y}
	var second image.Point
	haveSecond := false

	for steps := 0; steps < 4*w*h+8; steps++ {
		next, nextBack, ok := step(cur, back)
		if !ok {
			// isolated pixel
			break
		}
		if cur == start {
			if haveSecond && next == second {
				break
			}
			if !haveSecond {
				second, haveSecond = next, true
			}
		}
		cur, back = next, nextBack
		pts = append(pts, geometry.PointInt{X: cur.X, Y: cur.Y})
	}

	if n := len(pts); n > 1 && pts[n-1] == pts[0] {
		pts = pts[:n-1]
	}
	return pts
}
