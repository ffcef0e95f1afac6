package bubble

// FillRoundedRect paints the rounded rectangle described by g.
//
// Every pixel of the bounding box is tested with insideRoundedRect; pixels
// outside the corner discs are left untouched.
func FillRoundedRect(c *Canvas, g Geometry, col RGBA) {
	for ly := 0; ly < g.Height; ly++ {
		for lx := 0; lx < g.Width; lx++ {
			if insideRoundedRect(lx, ly, g.Width, g.Height, g.Radius) {
				c.SetPixel(g.X+lx, g.Y+ly, col)
			}
		}
	}
}

// insideRoundedRect reports whether local pixel (lx, ly) of a w×h box with
// corner radius r belongs to the shape.
//
// A pixel is inside when it lies in the horizontal or vertical band between
// the corner squares, or when the distance from (dx, dy), its distance to
// the two nearest edges, to (r, r) is at most r. The test is evaluated at the
// pixel centre in doubled coordinates, which keeps it integral and makes the
// shape mirror-symmetric on both axes.
// Sampling pixel corners instead would also fill column w-r of the band and
// break that symmetry, so keep the centre sampling.
func insideRoundedRect(lx, ly, w, h, r int) bool {
	cx, cy := 2*lx+1, 2*ly+1
	w2, h2, r2 := 2*w, 2*h, 2*r

	if (cx >= r2 && cx <= w2-r2) || (cy >= r2 && cy <= h2-r2) {
		return true
	}

	dx := min(cx, w2-cx) - r2
	dy := min(cy, h2-cy) - r2
	return dx*dx+dy*dy <= r2*r2
}
