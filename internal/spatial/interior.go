package spatial

import (
	"sort"

	"github.com/twpayne/go-geom"
)

type interval struct {
	lo, hi float64
}

func (iv interval) width() float64 { return iv.hi - iv.lo }

// InteriorPoint returns a point that lies inside mp, treating mp as the union
// of its parts. Unlike the centroid it stays inside concave and multi-part
// shapes.
//
// For every part a horizontal scan line is placed through the middle of the
// part's envelope, nudged so it passes between the vertex ordinates of every
// part, so it never runs along a horizontal edge. The line is
// cut against all parts, overlapping spans are merged, and the midpoint of the
// widest span over all scan lines wins. ok is false when mp has no area.
func InteriorPoint(mp *geom.MultiPolygon) (x, y float64, ok bool) {
	if mp == nil || mp.Empty() {
		return 0, 0, false
	}

	parts := make([]*geom.Polygon, 0, mp.NumPolygons())
	for i := 0; i < mp.NumPolygons(); i++ {
		parts = append(parts, mp.Polygon(i))
	}

	best := interval{lo: 0, hi: -1}
	var bestY float64
	for _, p := range parts {
		if p.Empty() {
			continue
		}
		scanY, found := scanLineY(p, parts)
		if !found {
			continue
		}
		iv, found := widestSpan(parts, scanY)
		if found && iv.width() > best.width() {
			best = iv
			bestY = scanY
		}
	}

	if best.width() <= 0 {
		return 0, 0, false
	}
	return (best.lo + best.hi) / 2, bestY, true
}

// scanLineY picks the ordinate halfway between the two vertex ordinates, taken
// from all parts, that bracket the centre of p's envelope.
func scanLineY(p *geom.Polygon, parts []*geom.Polygon) (float64, bool) {
	b := p.Bounds()
	minY, maxY := b.Min(1), b.Max(1)
	if !(maxY > minY) {
		return 0, false
	}
	centre := (minY + maxY) / 2

	lo, hi := minY, maxY
	for _, part := range parts {
		flat, stride := part.FlatCoords(), part.Stride()
		for i := 1; i < len(flat); i += stride {
			v := flat[i]
			if v <= centre {
				if v > lo {
					lo = v
				}
			} else if v < hi {
				hi = v
			}
		}
	}
	return (lo + hi) / 2, true
}

// widestSpan intersects the line at y with every part and returns the widest
// span of the merged result.
func widestSpan(parts []*geom.Polygon, y float64) (interval, bool) {
	var spans []interval
	for _, p := range parts {
		spans = append(spans, polygonSpans(p, y)...)
	}
	if len(spans) == 0 {
		return interval{}, false
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].lo < spans[j].lo })

	best := interval{lo: 0, hi: -1}
	cur := spans[0]
	for _, s := range spans[1:] {
		if s.lo <= cur.hi {
			if s.hi > cur.hi {
				cur.hi = s.hi
			}
			continue
		}
		if cur.width() > best.width() {
			best = cur
		}
		cur = s
	}
	if cur.width() > best.width() {
		best = cur
	}

	return best, best.width() > 0
}

// polygonSpans returns the interior spans of one polygon (holes included)
// along the horizontal line at y, using the even-odd rule.
func polygonSpans(p *geom.Polygon, y float64) []interval {
	var xs []float64
	stride := p.Stride()
	for r := 0; r < p.NumLinearRings(); r++ {
		flat := p.LinearRing(r).FlatCoords()
		n := len(flat) / stride
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			x1, y1 := flat[i*stride], flat[i*stride+1]
			x2, y2 := flat[j*stride], flat[j*stride+1]
			if (y1 > y) == (y2 > y) {
				continue
			}
			xs = append(xs, x1+(y-y1)*(x2-x1)/(y2-y1))
		}
	}

	sort.Float64s(xs)
	spans := make([]interval, 0, len(xs)/2)
	for i := 0; i+1 < len(xs); i += 2 {
		spans = append(spans, interval{lo: xs[i], hi: xs[i+1]})
	}
	return spans
}
