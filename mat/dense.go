package mat

import (
	"cmp"
	"fmt"
	"math"
	"math/cmplx"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Dense is a row major dense complex matrix.
type Dense struct {
	rows int
	cols int
	data []complex128
}

// NewDense creates a rows by cols matrix backed by data.
// A nil data allocates a zero matrix.
func NewDense(rows, cols int, data []complex128) *Dense {
	if data == nil {
		data = make([]complex128, rows*cols)
	}
	if len(data) != rows*cols {
		panic(fmt.Sprintf("%d %d %d", rows, cols, len(data)))
	}
	return &Dense{rows: rows, cols: cols, data: data}
}

func D(rows [][]complex128) *Dense {
	m := NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		if len(row) != m.cols {
			panic(fmt.Sprintf("row %d has %d columns, expected %d", i, len(row), m.cols))
		}
		copy(m.data[i*m.cols:], row)
	}
	return m
}

func (m *Dense) Rows() int { return m.rows }
func (m *Dense) Cols() int { return m.cols }

func (m *Dense) At(i, j int) complex128 { return m.data[i*m.cols+j] }

func (m *Dense) Set(i, j int, v complex128) { m.data[i*m.cols+j] = v }

func (m *Dense) Clone() *Dense {
	return &Dense{rows: m.rows, cols: m.cols, data: slices.Clone(m.data)}
}

// ToSlice2 returns a copy of m as a slice of rows.
func (m *Dense) ToSlice2() [][]complex128 {
	rows := make([][]complex128, m.rows)
	for i := range rows {
		rows[i] = slices.Clone(m.data[i*m.cols : (i+1)*m.cols])
	}
	return rows
}

// COO returns a sparse copy of m.
func (m *Dense) COO() *COO {
	c := COOZeros(m.rows, m.cols)
	for i := range m.rows {
		for j := range m.cols {
			if v := m.At(i, j); v != 0 {
				c.Data = append(c.Data, vRowCol{v: v, row: i, col: j})
			}
		}
	}
	return c
}

// Add sets m to a + b.
func (m *Dense) Add(a, b *Dense) {
	sameShape(a, b)
	data := make([]complex128, len(a.data))
	for i, v := range a.data {
		data[i] = v + b.data[i]
	}
	m.rows, m.cols, m.data = a.rows, a.cols, data
}

// Sub sets m to a - b.
func (m *Dense) Sub(a, b *Dense) {
	sameShape(a, b)
	data := make([]complex128, len(a.data))
	for i, v := range a.data {
		data[i] = v - b.data[i]
	}
	m.rows, m.cols, m.data = a.rows, a.cols, data
}

// Scale sets m to c*a.
func (m *Dense) Scale(c complex128, a *Dense) {
	data := make([]complex128, len(a.data))
	for i, v := range a.data {
		data[i] = c * v
	}
	m.rows, m.cols, m.data = a.rows, a.cols, data
}

// Mul sets m to the matrix product a*b.
func (m *Dense) Mul(a, b *Dense) {
	if a.cols != b.rows {
		panic(fmt.Sprintf("wrong dimensions %dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	data := make([]complex128, a.rows*b.cols)
	for i := range a.rows {
		for k := range a.cols {
			aik := a.data[i*a.cols+k]
			if aik == 0 {
				continue
			}
			for j := range b.cols {
				data[i*b.cols+j] += aik * b.data[k*b.cols+j]
			}
		}
	}
	m.rows, m.cols, m.data = a.rows, b.cols, data
}

// Kron sets m to the Kronecker product a⊗b.
func (m *Dense) Kron(a, b *Dense) {
	rows, cols := a.rows*b.rows, a.cols*b.cols
	data := make([]complex128, rows*cols)
	for ai := range a.rows {
		for aj := range a.cols {
			av := a.data[ai*a.cols+aj]
			if av == 0 {
				continue
			}
			for bi := range b.rows {
				for bj := range b.cols {
					data[(ai*b.rows+bi)*cols+aj*b.cols+bj] = av * b.data[bi*b.cols+bj]
				}
			}
		}
	}
	m.rows, m.cols, m.data = rows, cols, data
}

// T returns the transpose of m.
func (m *Dense) T() *Dense {
	t := NewDense(m.cols, m.rows, nil)
	for i := range m.rows {
		for j := range m.cols {
			t.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return t
}

// H returns the conjugate transpose of m.
func (m *Dense) H() *Dense {
	t := m.T()
	for i, v := range t.data {
		t.data[i] = cmplx.Conj(v)
	}
	return t
}

// Conj returns the element-wise complex conjugate of m.
func (m *Dense) Conj() *Dense {
	c := m.Clone()
	for i, v := range c.data {
		c.data[i] = cmplx.Conj(v)
	}
	return c
}

func (m *Dense) Trace() complex128 {
	var tr complex128
	for i := range min(m.rows, m.cols) {
		tr += m.data[i*m.cols+i]
	}
	return tr
}

// MaxAbs returns the largest element modulus of m.
func (m *Dense) MaxAbs() float64 {
	var mx float64
	for _, v := range m.data {
		mx = math.Max(mx, cmplx.Abs(v))
	}
	return mx
}

// HermitianDeviation returns max |m - m†|.
func (m *Dense) HermitianDeviation() float64 {
	var mx float64
	for i := range m.rows {
		for j := i; j < m.cols; j++ {
			mx = math.Max(mx, cmplx.Abs(m.At(i, j)-cmplx.Conj(m.At(j, i))))
		}
	}
	return mx
}

func (m *Dense) IsFinite() bool {
	for _, v := range m.data {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return false
		}
	}
	return true
}

// Commutator returns [a, b] = ab - ba.
func Commutator(a, b *Dense) *Dense {
	ab, ba := new(Dense), new(Dense)
	ab.Mul(a, b)
	ba.Mul(b, a)
	ab.Sub(ab, ba)
	return ab
}

// Vec flattens m in row major order.
func Vec(m *Dense) []complex128 {
	return slices.Clone(m.data)
}

// Unvec reshapes a row major vector back into a rows by cols matrix.
func Unvec(v []complex128, rows, cols int) *Dense {
	return NewDense(rows, cols, slices.Clone(v))
}

// MulVec returns m*v.
func (m *Dense) MulVec(v []complex128) []complex128 {
	if len(v) != m.cols {
		panic(fmt.Sprintf("%d %d", len(v), m.cols))
	}
	out := make([]complex128, m.rows)
	for i := range m.rows {
		var s complex128
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, a := range row {
			s += a * v[j]
		}
		out[i] = s
	}
	return out
}

// Exp sets m to the matrix exponential of a.
// The complex exponential is obtained from the real exponential of the block matrix
// [[Re a, -Im a], [Im a, Re a]], which is an algebra homomorphism of complex matrices.
func (m *Dense) Exp(a *Dense) {
	if a.rows != a.cols {
		panic(fmt.Sprintf("not square %dx%d", a.rows, a.cols))
	}
	n := a.rows
	block := mat.NewDense(2*n, 2*n, nil)
	for i := range n {
		for j := range n {
			v := a.At(i, j)
			block.Set(i, j, real(v))
			block.Set(i, j+n, -imag(v))
			block.Set(i+n, j, imag(v))
			block.Set(i+n, j+n, real(v))
		}
	}

	var e mat.Dense
	e.Exp(block)

	data := make([]complex128, n*n)
	for i := range n {
		for j := range n {
			data[i*n+j] = complex(e.At(i, j), e.At(i+n, j))
		}
	}
	m.rows, m.cols, m.data = n, n, data
}

// ValVec is an eigenvalue together with its normalized eigenvector.
type ValVec struct {
	Val float64
	Vec []float64
}

// EigenSym diagonalizes a real symmetric matrix, returning the eigenpairs sorted by ascending eigenvalue.
func (m *Dense) EigenSym() ([]ValVec, error) {
	n := m.rows
	if m.rows != m.cols {
		return nil, errors.Errorf("not square %dx%d", m.rows, m.cols)
	}
	sym := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			v := m.At(i, j)
			if imag(v) != 0 {
				return nil, errors.Errorf("not real %d %d %v", i, j, v)
			}
			if v != cmplx.Conj(m.At(j, i)) {
				return nil, errors.Errorf("not symmetric %d %d %v %v", i, j, v, m.At(j, i))
			}
			sym.SetSym(i, j, real(v))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, errors.Errorf("eigen decomposition failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	vvs := make([]ValVec, 0, n)
	for k, v := range vals {
		vec := make([]float64, n)
		for i := range n {
			vec[i] = vecs.At(i, k)
		}
		vvs = append(vvs, ValVec{Val: v, Vec: vec})
	}
	slices.SortFunc(vvs, func(a, b ValVec) int { return cmp.Compare(a.Val, b.Val) })
	return vvs, nil
}

// HermitianEigenvalues returns the ascending eigenvalues of a Hermitian matrix.
// The matrix A + iB is embedded into the real symmetric [[A, -B], [B, A]], whose spectrum is that of A + iB with every eigenvalue doubled.
func (m *Dense) HermitianEigenvalues() ([]float64, error) {
	n := m.rows
	if m.rows != m.cols {
		return nil, errors.Errorf("not square %dx%d", m.rows, m.cols)
	}
	sym := mat.NewSymDense(2*n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			v := (m.At(i, j) + cmplx.Conj(m.At(j, i))) / 2
			sym.SetSym(i, j, real(v))
			sym.SetSym(i+n, j+n, real(v))
			sym.SetSym(i, j+n, -imag(v))
			sym.SetSym(j, i+n, imag(v))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, false); !ok {
		return nil, errors.Errorf("eigen decomposition failed")
	}
	doubled := eig.Values(nil)
	slices.Sort(doubled)
	vals := make([]float64, 0, n)
	for i := 0; i < len(doubled); i += 2 {
		vals = append(vals, doubled[i])
	}
	return vals, nil
}

func (m *Dense) String() string {
	lines := []string{}
	for i := 0; i < m.rows; i++ {
		cs := []string{}
		for j := 0; j < m.cols; j++ {
			v := m.At(i, j)
			switch {
			case imag(v) == 0:
				cs = append(cs, format(real(v)))
			case real(v) == 0:
				cs = append(cs, format(imag(v))+"i")
			default:
				cs = append(cs, format(real(v))+"+"+format(imag(v))+"i")
			}
		}
		lines = append(lines, strings.Join(cs, "\t"))
	}
	return strings.Join(lines, "\n")
}

func sameShape(a, b *Dense) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Sprintf("wrong dimensions %dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
}
