package rigid2d

import (
	"math"
)

// IsValidFloat reports whether x is a usable coordinate (not NaN or infinite).
func IsValidFloat(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Vec2 is a 2D column vector.
type Vec2 struct {
	X, Y float64
}

func (v *Vec2) Set(x, y float64) {
	v.X = x
	v.Y = y
}

func (v *Vec2) SetZero() {
	v.X = 0.0
	v.Y = 0.0
}

func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{v.X + w.X, v.Y + w.Y}
}

func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{v.X - w.X, v.Y - w.Y}
}

func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{s * v.X, s * v.Y}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{-v.X, -v.Y}
}

func (v Vec2) Dot(w Vec2) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Cross returns the scalar z component of the 2D cross product.
func (v Vec2) Cross(w Vec2) float64 {
	return v.X*w.Y - v.Y*w.X
}

// Skew returns the counter-clockwise perpendicular, so that
// skew(v)·w == cross(v, w).
func (v Vec2) Skew() Vec2 {
	return Vec2{-v.Y, v.X}
}

func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize scales v to unit length in place and returns the original length.
// A vector shorter than epsilon is left untouched and 0 is returned.
func (v *Vec2) Normalize() float64 {
	length := v.Length()
	if length < epsilon {
		return 0.0
	}

	inv := 1.0 / length
	v.X *= inv
	v.Y *= inv
	return length
}

func (v Vec2) IsValid() bool {
	return IsValidFloat(v.X) && IsValidFloat(v.Y)
}

func (v Vec2) Component(i int) float64 {
	if i == 0 {
		return v.X
	}
	return v.Y
}

func (v *Vec2) SetComponent(i int, value float64) {
	if i == 0 {
		v.X = value
		return
	}
	v.Y = value
}

// CrossVS computes v × s, yielding a vector.
func CrossVS(v Vec2, s float64) Vec2 {
	return Vec2{s * v.Y, -s * v.X}
}

// CrossSV computes s × v, yielding a vector.
func CrossSV(s float64, v Vec2) Vec2 {
	return Vec2{-s * v.Y, s * v.X}
}

func Vec2Min(a, b Vec2) Vec2 {
	return Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)}
}

func Vec2Max(a, b Vec2) Vec2 {
	return Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)}
}

func Vec2Abs(a Vec2) Vec2 {
	return Vec2{math.Abs(a.X), math.Abs(a.Y)}
}

func Vec2Clamp(a, low, high Vec2) Vec2 {
	return Vec2Max(low, Vec2Min(a, high))
}

func Distance(a, b Vec2) float64 {
	return a.Sub(b).Length()
}

func DistanceSquared(a, b Vec2) float64 {
	c := a.Sub(b)
	return c.Dot(c)
}

// Vec3 is a 2D column vector with three elements, used by the 3x3 joint
// constraint blocks.
type Vec3 struct {
	X, Y, Z float64
}

func (v *Vec3) SetZero() {
	v.X = 0.0
	v.Y = 0.0
	v.Z = 0.0
}

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

func (v Vec3) Mul(s float64) Vec3 {
	return Vec3{s * v.X, s * v.Y, s * v.Z}
}

func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{v.Y*w.Z - v.Z*w.Y, v.Z*w.X - v.X*w.Z, v.X*w.Y - v.Y*w.X}
}

// Mat22 is a 2-by-2 matrix stored in column-major order.
type Mat22 struct {
	Ex, Ey Vec2
}

func MakeMat22(c1, c2 Vec2) Mat22 {
	return Mat22{Ex: c1, Ey: c2}
}

func (m *Mat22) Set(c1, c2 Vec2) {
	m.Ex = c1
	m.Ey = c2
}

func (m *Mat22) SetIdentity() {
	m.Ex = Vec2{1.0, 0.0}
	m.Ey = Vec2{0.0, 1.0}
}

func (m *Mat22) SetZero() {
	m.Ex.SetZero()
	m.Ey.SetZero()
}

func (m Mat22) Inverse() Mat22 {
	a, b, c, d := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a*d - b*c
	if det != 0.0 {
		det = 1.0 / det
	}

	return Mat22{
		Ex: Vec2{det * d, -det * c},
		Ey: Vec2{-det * b, det * a},
	}
}

// Solve solves m * x = b. This is cheaper than computing the inverse when
// only one solution is needed.
func (m Mat22) Solve(b Vec2) Vec2 {
	a11, a12, a21, a22 := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det != 0.0 {
		det = 1.0 / det
	}

	return Vec2{
		det * (a22*b.X - a12*b.Y),
		det * (a11*b.Y - a21*b.X),
	}
}

// Apply multiplies the matrix by a vector. For a rotation matrix this
// transforms the vector from one frame to another.
func (m Mat22) Apply(v Vec2) Vec2 {
	return Vec2{m.Ex.X*v.X + m.Ey.X*v.Y, m.Ex.Y*v.X + m.Ey.Y*v.Y}
}

// ApplyT multiplies the matrix transpose by a vector (inverse transform for
// rotation matrices).
func (m Mat22) ApplyT(v Vec2) Vec2 {
	return Vec2{v.Dot(m.Ex), v.Dot(m.Ey)}
}

func Mat22Add(a, b Mat22) Mat22 {
	return Mat22{Ex: a.Ex.Add(b.Ex), Ey: a.Ey.Add(b.Ey)}
}

// Mat33 is a 3-by-3 matrix stored in column-major order.
type Mat33 struct {
	Ex, Ey, Ez Vec3
}

func (m *Mat33) SetZero() {
	m.Ex.SetZero()
	m.Ey.SetZero()
	m.Ez.SetZero()
}

// Solve33 solves m * x = b for the full 3x3 system.
func (m Mat33) Solve33(b Vec3) Vec3 {
	det := m.Ex.Dot(m.Ey.Cross(m.Ez))
	if det != 0.0 {
		det = 1.0 / det
	}

	return Vec3{
		det * b.Dot(m.Ey.Cross(m.Ez)),
		det * m.Ex.Dot(b.Cross(m.Ez)),
		det * m.Ex.Dot(m.Ey.Cross(b)),
	}
}

// Solve22 solves the upper-left 2x2 block of m * x = b.
func (m Mat33) Solve22(b Vec2) Vec2 {
	a11, a12, a21, a22 := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det != 0.0 {
		det = 1.0 / det
	}

	return Vec2{
		det * (a22*b.X - a12*b.Y),
		det * (a11*b.Y - a21*b.X),
	}
}

// Apply multiplies the matrix by a vector.
func (m Mat33) Apply(v Vec3) Vec3 {
	return m.Ex.Mul(v.X).Add(m.Ey.Mul(v.Y)).Add(m.Ez.Mul(v.Z))
}

// Apply22 multiplies the upper-left 2x2 block by a vector.
func (m Mat33) Apply22(v Vec2) Vec2 {
	return Vec2{m.Ex.X*v.X + m.Ey.X*v.Y, m.Ex.Y*v.X + m.Ey.Y*v.Y}
}

// GetInverse22 writes the inverse of the upper-left 2x2 block into out,
// zeroing the rest.
func (m Mat33) GetInverse22(out *Mat33) {
	a, b, c, d := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a*d - b*c
	if det != 0.0 {
		det = 1.0 / det
	}

	out.Ex = Vec3{det * d, -det * c, 0.0}
	out.Ey = Vec3{-det * b, det * a, 0.0}
	out.Ez = Vec3{}
}

// GetSymInverse33 writes the inverse of m into out, assuming m is symmetric.
// Writes the zero matrix if m is singular.
func (m Mat33) GetSymInverse33(out *Mat33) {
	det := m.Ex.Dot(m.Ey.Cross(m.Ez))
	if det != 0.0 {
		det = 1.0 / det
	}

	a11, a12, a13 := m.Ex.X, m.Ey.X, m.Ez.X
	a22, a23 := m.Ey.Y, m.Ez.Y
	a33 := m.Ez.Z

	out.Ex.X = det * (a22*a33 - a23*a23)
	out.Ex.Y = det * (a13*a23 - a12*a33)
	out.Ex.Z = det * (a12*a23 - a13*a22)

	out.Ey.X = out.Ex.Y
	out.Ey.Y = det * (a11*a33 - a13*a13)
	out.Ey.Z = det * (a13*a12 - a11*a23)

	out.Ez.X = out.Ex.Z
	out.Ez.Y = out.Ey.Z
	out.Ez.Z = det * (a11*a22 - a12*a12)
}

// Rot is a rotation expressed as sine and cosine of the angle.
type Rot struct {
	S, C float64
}

func MakeRot(angle float64) Rot {
	return Rot{S: math.Sin(angle), C: math.Cos(angle)}
}

func (q *Rot) Set(angle float64) {
	q.S = math.Sin(angle)
	q.C = math.Cos(angle)
}

func (q *Rot) SetIdentity() {
	q.S = 0.0
	q.C = 1.0
}

func (q Rot) Angle() float64 {
	return math.Atan2(q.S, q.C)
}

func (q Rot) XAxis() Vec2 {
	return Vec2{q.C, q.S}
}

func (q Rot) YAxis() Vec2 {
	return Vec2{-q.S, q.C}
}

// Mul composes two rotations: q * r.
func (q Rot) Mul(r Rot) Rot {
	return Rot{
		S: q.S*r.C + q.C*r.S,
		C: q.C*r.C - q.S*r.S,
	}
}

// MulT composes the inverse of q with r: qᵀ * r.
func (q Rot) MulT(r Rot) Rot {
	return Rot{
		S: q.C*r.S - q.S*r.C,
		C: q.C*r.C + q.S*r.S,
	}
}

// Apply rotates a vector.
func (q Rot) Apply(v Vec2) Vec2 {
	return Vec2{q.C*v.X - q.S*v.Y, q.S*v.X + q.C*v.Y}
}

// ApplyT inverse-rotates a vector.
func (q Rot) ApplyT(v Vec2) Vec2 {
	return Vec2{q.C*v.X + q.S*v.Y, -q.S*v.X + q.C*v.Y}
}

// Transform carries translation and rotation. It represents the position and
// orientation of a rigid frame.
type Transform struct {
	P Vec2
	Q Rot
}

func MakeTransform(position Vec2, rotation Rot) Transform {
	return Transform{P: position, Q: rotation}
}

func (t *Transform) SetIdentity() {
	t.P.SetZero()
	t.Q.SetIdentity()
}

func (t *Transform) Set(position Vec2, angle float64) {
	t.P = position
	t.Q.Set(angle)
}

// Apply maps a point from the frame into world coordinates.
func (t Transform) Apply(v Vec2) Vec2 {
	return Vec2{
		t.Q.C*v.X - t.Q.S*v.Y + t.P.X,
		t.Q.S*v.X + t.Q.C*v.Y + t.P.Y,
	}
}

// ApplyT maps a world point into the frame.
func (t Transform) ApplyT(v Vec2) Vec2 {
	px := v.X - t.P.X
	py := v.Y - t.P.Y
	return Vec2{
		t.Q.C*px + t.Q.S*py,
		-t.Q.S*px + t.Q.C*py,
	}
}

// MulTransforms composes a and b: (a·b)(v) == a(b(v)).
func MulTransforms(a, b Transform) Transform {
	return Transform{
		P: a.Q.Apply(b.P).Add(a.P),
		Q: a.Q.Mul(b.Q),
	}
}

// MulTTransforms composes the inverse of a with b.
func MulTTransforms(a, b Transform) Transform {
	return Transform{
		P: a.Q.ApplyT(b.P.Sub(a.P)),
		Q: a.Q.MulT(b.Q),
	}
}

// Sweep describes the motion of a body for TOI computation. Shapes are
// defined relative to the body origin, which may not coincide with the
// center of mass, but dynamics must interpolate the center of mass.
type Sweep struct {
	LocalCenter Vec2    // local center of mass
	C0, C       Vec2    // world center positions
	A0, A       float64 // world angles

	// Alpha0 is the fraction of the current step already consumed;
	// c0/a0 are the state at alpha0.
	Alpha0 float64
}

// GetTransform computes the body-origin transform at the interpolation
// factor beta in [0,1].
func (sweep Sweep) GetTransform(beta float64) Transform {
	var xf Transform
	xf.P = sweep.C0.Mul(1.0 - beta).Add(sweep.C.Mul(beta))
	xf.Q.Set((1.0-beta)*sweep.A0 + beta*sweep.A)

	// Shift to origin.
	xf.P = xf.P.Sub(xf.Q.Apply(sweep.LocalCenter))
	return xf
}

// Advance moves the sweep start forward to the absolute time alpha, leaving
// the end state untouched.
func (sweep *Sweep) Advance(alpha float64) {
	assert(sweep.Alpha0 < 1.0)
	beta := (alpha - sweep.Alpha0) / (1.0 - sweep.Alpha0)
	sweep.C0 = sweep.C0.Add(sweep.C.Sub(sweep.C0).Mul(beta))
	sweep.A0 += beta * (sweep.A - sweep.A0)
	sweep.Alpha0 = alpha
}

// Normalize shifts both angles into a common 2π window so the root finder
// is not confused by large rotations.
func (sweep *Sweep) Normalize() {
	twoPi := 2.0 * math.Pi
	d := twoPi * math.Floor(sweep.A0/twoPi)
	sweep.A0 -= d
	sweep.A -= d
}

func clampFloat(a, low, high float64) float64 {
	return math.Max(low, math.Min(a, high))
}
