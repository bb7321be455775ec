package sway

import "math"

// Affine matrices are stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform builds a node's local matrix. Points are offset by
// the pivot, scaled, rotated and then moved to (X, Y).
func computeLocalTransform(n *Node) [6]float64 {
	sin, cos := math.Sincos(n.Rotation)
	a, b := cos*n.ScaleX, sin*n.ScaleX
	c, d := -sin*n.ScaleY, cos*n.ScaleY
	return [6]float64{
		a, b, c, d,
		n.X - a*n.PivotX - c*n.PivotY,
		n.Y - b*n.PivotX - d*n.PivotY,
	}
}

// multiplyAffine returns p * c, so c is applied first.
func multiplyAffine(p, c [6]float64) [6]float64 {
	var out [6]float64
	for col := 0; col < 3; col++ {
		x, y := c[2*col], c[2*col+1]
		out[2*col] = p[0]*x + p[2]*y
		out[2*col+1] = p[1]*x + p[3]*y
	}
	out[4] += p[4]
	out[5] += p[5]
	return out
}

// invertAffine returns the inverse of m, or the identity when m is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if math.Abs(det) < 1e-12 {
		return identityTransform
	}
	a, b := m[3]/det, -m[1]/det
	c, d := -m[2]/det, m[0]/det
	return [6]float64{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}
}

func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// updateWorldTransform refreshes world matrices and alpha below n. A node is
// recomputed when it is dirty or when its parent was recomputed in the same
// pass; clean subtrees keep their cached values.
func updateWorldTransform(n *Node, parent [6]float64, parentAlpha float64, force bool) {
	if n.transformDirty || force {
		n.worldTransform = multiplyAffine(parent, computeLocalTransform(n))
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
		force = true
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, n.worldAlpha, force)
	}
}

// worldAABB returns the axis-aligned box enclosing the w x h rectangle at the
// local origin after transformation by m.
func worldAABB(m [6]float64, w, h float64) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, corner := range [4][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}} {
		x, y := transformPoint(m, corner[0], corner[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// SetPosition moves the node within its parent.
func (n *Node) SetPosition(x, y float64) {
	n.X, n.Y = x, y
	n.transformDirty = true
}

func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX, n.ScaleY = sx, sy
	n.transformDirty = true
}

// SetSize changes the hit and intersection box. Size does not feed the
// matrix, so the node stays clean.
func (n *Node) SetSize(w, h float64) {
	n.Width, n.Height = w, h
}

func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.transformDirty = true
}

// MarkDirty schedules a transform refresh after fields were assigned
// directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// WorldAlpha returns the product of alphas from the root down to n as of the
// last refresh.
func (n *Node) WorldAlpha() float64 {
	return n.worldAlpha
}

// WorldBounds returns the node's box in world space as of the last refresh.
// Visibility and hit testing both read it.
func (n *Node) WorldBounds() Rect {
	return worldAABB(n.worldTransform, n.Width, n.Height)
}

func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return transformPoint(invertAffine(n.worldTransform), wx, wy)
}

func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(n.worldTransform, lx, ly)
}
