package qrtone

// GF is a Galois field GF(2^m) represented by its exponential and discrete
// logarithm tables, built from a primitive polynomial. QRTone uses a single
// field, GF(16) with primitive polynomial 0x13 and generator base 1, shared
// by the header codec and every payload block.
type GF struct {
	primitive     int32
	size          int32
	generatorBase int32
	expTable      []int32
	logTable      []int32
}

// NewGF builds the exponential/log tables for GF(size) under the given
// primitive polynomial, assuming generator alpha = 2.
func NewGF(primitive, size, generatorBase int32) *GF {
	f := &GF{
		primitive:     primitive,
		size:          size,
		generatorBase: generatorBase,
		expTable:      make([]int32, size),
		logTable:      make([]int32, size),
	}
	x := int32(1)
	for i := int32(0); i < size; i++ {
		f.expTable[i] = x
		x *= 2
		if x >= size {
			x ^= primitive
			x &= size - 1
		}
	}
	for i := int32(0); i < size-1; i++ {
		f.logTable[f.expTable[i]] = i
	}
	return f
}

// Multiply computes a*b in the field. logTable[0] is never read because
// both operands are checked for zero first.
func (f *GF) Multiply(a, b int32) int32 {
	if a == 0 || b == 0 {
		return 0
	}
	return f.expTable[(f.logTable[a]+f.logTable[b])%(f.size-1)]
}

// Inverse computes the multiplicative inverse of a non-zero element.
func (f *GF) Inverse(a int32) int32 {
	return f.expTable[f.size-f.logTable[a]-1]
}

// AddOrSubtract is addition and subtraction in GF(2^m): both are XOR.
func AddOrSubtract(a, b int32) int32 {
	return a ^ b
}

// GFPoly is a polynomial over a GF, stored with the highest-degree
// coefficient first, matching the layout the header/payload codec builds
// symbol arrays in.
type GFPoly struct {
	coefficients []int32
}

// NewGFPoly builds a polynomial from its coefficients (highest degree
// first), stripping leading zero coefficients the way the reference
// decoder does so degree() stays accurate.
func NewGFPoly(coefficients []int32) GFPoly {
	if len(coefficients) > 1 && coefficients[0] == 0 {
		firstNonZero := 1
		for firstNonZero < len(coefficients) && coefficients[firstNonZero] == 0 {
			firstNonZero++
		}
		if firstNonZero == len(coefficients) {
			return GFPoly{coefficients: []int32{0}}
		}
		out := make([]int32, len(coefficients)-firstNonZero)
		copy(out, coefficients[firstNonZero:])
		return GFPoly{coefficients: out}
	}
	out := make([]int32, len(coefficients))
	copy(out, coefficients)
	return GFPoly{coefficients: out}
}

func zeroPoly() GFPoly { return GFPoly{coefficients: []int32{0}} }
func onePoly() GFPoly  { return GFPoly{coefficients: []int32{1}} }

// IsZero reports whether this is the constant zero polynomial.
func (p GFPoly) IsZero() bool {
	return p.coefficients[0] == 0
}

// Degree returns the polynomial's degree.
func (p GFPoly) Degree() int {
	return len(p.coefficients) - 1
}

// Coefficient returns the coefficient of x^degree.
func (p GFPoly) Coefficient(degree int) int32 {
	return p.coefficients[len(p.coefficients)-1-degree]
}

// EvaluateAt evaluates the polynomial at a using Horner's method.
func (p GFPoly) EvaluateAt(field *GF, a int32) int32 {
	if a == 0 {
		return p.Coefficient(0)
	}
	if a == 1 {
		var result int32
		for _, c := range p.coefficients {
			result = AddOrSubtract(result, c)
		}
		return result
	}
	result := p.coefficients[0]
	for i := 1; i < len(p.coefficients); i++ {
		result = AddOrSubtract(field.Multiply(a, result), p.coefficients[i])
	}
	return result
}

// AddOrSubtractPoly adds (equivalently subtracts) two polynomials.
func AddOrSubtractPoly(a, b GFPoly) GFPoly {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	smaller, larger := a.coefficients, b.coefficients
	if len(smaller) > len(larger) {
		smaller, larger = larger, smaller
	}
	sumDiff := make([]int32, len(larger))
	lengthDiff := len(larger) - len(smaller)
	copy(sumDiff, larger[:lengthDiff])
	for i := lengthDiff; i < len(larger); i++ {
		sumDiff[i] = AddOrSubtract(smaller[i-lengthDiff], larger[i])
	}
	return NewGFPoly(sumDiff)
}

// MultiplyByMonomial multiplies this polynomial by coefficient*x^degree.
func (p GFPoly) MultiplyByMonomial(field *GF, degree int, coefficient int32) (GFPoly, error) {
	if degree < 0 {
		return GFPoly{}, ErrIllegalArgument
	}
	if coefficient == 0 {
		return zeroPoly(), nil
	}
	product := make([]int32, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		product[i] = field.Multiply(c, coefficient)
	}
	return NewGFPoly(product), nil
}

// MultiplyScalar multiplies every coefficient by a scalar.
func (p GFPoly) MultiplyScalar(field *GF, scalar int32) GFPoly {
	if scalar == 0 {
		return zeroPoly()
	}
	if scalar == 1 {
		return p
	}
	product := make([]int32, len(p.coefficients))
	for i, c := range p.coefficients {
		product[i] = field.Multiply(c, scalar)
	}
	return NewGFPoly(product)
}

// MultiplyPoly multiplies two polynomials over the field.
func MultiplyPoly(field *GF, a, b GFPoly) GFPoly {
	if a.IsZero() || b.IsZero() {
		return zeroPoly()
	}
	product := make([]int32, len(a.coefficients)+len(b.coefficients)-1)
	for i, ca := range a.coefficients {
		for j, cb := range b.coefficients {
			product[i+j] = AddOrSubtract(product[i+j], field.Multiply(ca, cb))
		}
	}
	return NewGFPoly(product)
}

// BuildMonomial builds the polynomial coefficient*x^degree.
func BuildMonomial(degree int, coefficient int32) (GFPoly, error) {
	if degree < 0 {
		return GFPoly{}, ErrIllegalArgument
	}
	if coefficient == 0 {
		return zeroPoly(), nil
	}
	coefficients := make([]int32, degree+1)
	coefficients[0] = coefficient
	return NewGFPoly(coefficients), nil
}

// Divide divides this polynomial by other, returning the remainder only
// (the quotient is never needed outside the Euclidean decoder, which
// tracks it separately).
func (p GFPoly) Divide(field *GF, other GFPoly) (GFPoly, error) {
	if other.IsZero() {
		return GFPoly{}, ErrDivideByZero
	}
	remainder := p
	denominatorLeadingTerm := other.Coefficient(other.Degree())
	inverseDenominatorLeadingTerm := field.Inverse(denominatorLeadingTerm)

	for remainder.Degree() >= other.Degree() && !remainder.IsZero() {
		degreeDifference := remainder.Degree() - other.Degree()
		scale := field.Multiply(remainder.Coefficient(remainder.Degree()), inverseDenominatorLeadingTerm)
		term, err := other.MultiplyByMonomial(field, degreeDifference, scale)
		if err != nil {
			return GFPoly{}, err
		}
		remainder = AddOrSubtractPoly(remainder, term)
	}
	return remainder, nil
}
