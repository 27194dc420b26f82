package qrtone

// ReedSolomon is grounded on the ZXing-derived Euclidean Reed-Solomon
// codec: a GF(2^m) field plus a cache of generator polynomials indexed by
// degree, grown lazily as encode() is asked for larger ECC blocks.
type ReedSolomon struct {
	field      *GF
	generators []GFPoly
}

// NewReedSolomon builds a codec over GF(size) with the given primitive
// polynomial and generator base, seeded with the degree-0 generator "1".
func NewReedSolomon(primitive, size, generatorBase int32) *ReedSolomon {
	return &ReedSolomon{
		field:      NewGF(primitive, size, generatorBase),
		generators: []GFPoly{onePoly()},
	}
}

// Field exposes the underlying Galois field, needed by the decoder's
// error-location search.
func (rs *ReedSolomon) Field() *GF {
	return rs.field
}

func (rs *ReedSolomon) buildGenerator(degree int) (GFPoly, error) {
	if degree >= len(rs.generators) {
		lastGenerator := rs.generators[len(rs.generators)-1]
		for d := len(rs.generators); d <= degree; d++ {
			term := NewGFPoly([]int32{1, rs.field.expTable[int32(d-1)+rs.field.generatorBase]})
			nextGenerator := MultiplyPoly(rs.field, lastGenerator, term)
			rs.generators = append(rs.generators, nextGenerator)
			lastGenerator = nextGenerator
		}
	}
	return rs.generators[degree], nil
}

// Encode appends ecBytes Reed-Solomon parity symbols to the data held in
// the first len(toEncode)-ecBytes entries of toEncode, writing the parity
// into the trailing ecBytes slots of the same slice (toEncode must already
// be sized data+parity, matching the in-place C contract).
func (rs *ReedSolomon) Encode(toEncode []int32, ecBytes int) error {
	dataBytes := len(toEncode) - ecBytes
	generator, err := rs.buildGenerator(ecBytes)
	if err != nil {
		return err
	}
	info := NewGFPoly(append([]int32(nil), toEncode[:dataBytes]...))
	monomialResult, err := info.MultiplyByMonomial(rs.field, ecBytes, 1)
	if err != nil {
		return err
	}
	remainder, err := monomialResult.Divide(rs.field, generator)
	if err != nil {
		return err
	}
	numZeroCoefficients := ecBytes - len(remainder.coefficients)
	for i := 0; i < numZeroCoefficients; i++ {
		toEncode[dataBytes+i] = 0
	}
	copy(toEncode[dataBytes+numZeroCoefficients:], remainder.coefficients)
	return nil
}

// runEuclideanAlgorithm runs the Euclidean algorithm until the remainder's
// degree drops below rDegree/2, returning the error locator (sigma) and
// error evaluator (omega) polynomials.
func runEuclideanAlgorithm(field *GF, a, b GFPoly, rDegree int) (sigma, omega GFPoly, err error) {
	if a.Degree() < b.Degree() {
		a, b = b, a
	}

	rLast := a
	r := b
	tLast := zeroPoly()
	t := onePoly()

	for r.Degree() >= rDegree/2 && !r.IsZero() {
		rLastLast := rLast
		tLastLast := tLast
		rLast = r
		tLast = t

		if rLast.IsZero() {
			return GFPoly{}, GFPoly{}, ErrReedSolomon
		}

		r = rLastLast
		q := zeroPoly()

		denominatorLeadingTerm := rLast.Coefficient(rLast.Degree())
		dltInverse := field.Inverse(denominatorLeadingTerm)
		for r.Degree() >= rLast.Degree() && !r.IsZero() {
			degreeDiff := r.Degree() - rLast.Degree()
			scale := field.Multiply(r.Coefficient(r.Degree()), dltInverse)
			other, buildErr := BuildMonomial(degreeDiff, scale)
			if buildErr != nil {
				return GFPoly{}, GFPoly{}, buildErr
			}
			q = AddOrSubtractPoly(q, other)
			term, mulErr := rLast.MultiplyByMonomial(field, degreeDiff, scale)
			if mulErr != nil {
				return GFPoly{}, GFPoly{}, mulErr
			}
			r = AddOrSubtractPoly(r, term)
		}

		result := MultiplyPoly(field, q, tLast)
		t = AddOrSubtractPoly(result, tLastLast)

		if r.Degree() >= rLast.Degree() {
			return GFPoly{}, GFPoly{}, ErrIllegalState
		}
	}

	sigmaTildeAtZero := t.Coefficient(0)
	if sigmaTildeAtZero == 0 {
		return GFPoly{}, GFPoly{}, ErrReedSolomon
	}
	inverse := field.Inverse(sigmaTildeAtZero)
	return t.MultiplyScalar(field, inverse), r.MultiplyScalar(field, inverse), nil
}

func findErrorLocations(errorLocator GFPoly, field *GF) ([]int32, error) {
	numErrors := errorLocator.Degree()
	if numErrors == 1 {
		return []int32{errorLocator.Coefficient(1)}, nil
	}
	result := make([]int32, numErrors)
	e := 0
	for i := int32(0); i < field.size && e < numErrors; i++ {
		if errorLocator.EvaluateAt(field, i) == 0 {
			result[e] = field.Inverse(i)
			e++
		}
	}
	if e != numErrors {
		return nil, ErrReedSolomon
	}
	return result, nil
}

func findErrorMagnitudes(errorEvaluator GFPoly, field *GF, errorLocations []int32) []int32 {
	s := len(errorLocations)
	result := make([]int32, s)
	for i := 0; i < s; i++ {
		xiInverse := field.Inverse(errorLocations[i])
		denominator := int32(1)
		for j := 0; j < s; j++ {
			if i != j {
				denominator = field.Multiply(denominator, AddOrSubtract(1, field.Multiply(errorLocations[j], xiInverse)))
			}
		}
		result[i] = field.Multiply(errorEvaluator.EvaluateAt(field, xiInverse), field.Inverse(denominator))
		if field.generatorBase != 0 {
			result[i] = field.Multiply(result[i], xiInverse)
		}
	}
	return result
}

// Decode fixes correctable errors in toDecode in place using the trailing
// ecBytes parity symbols, returning ErrReedSolomon if the block is
// uncorrectable. On success it adds the number of corrected symbols to
// *fixedErrors.
func Decode(field *GF, toDecode []int32, ecBytes int, fixedErrors *int) error {
	poly := NewGFPoly(toDecode)
	syndromeCoefficients := make([]int32, ecBytes)
	noError := true
	for i := 0; i < ecBytes; i++ {
		eval := poly.EvaluateAt(field, field.expTable[int32(i)+field.generatorBase])
		syndromeCoefficients[ecBytes-1-i] = eval
		if eval != 0 {
			noError = false
		}
	}
	if noError {
		return nil
	}

	syndrome := NewGFPoly(syndromeCoefficients)
	mono, err := BuildMonomial(ecBytes, 1)
	if err != nil {
		return err
	}
	sigma, omega, err := runEuclideanAlgorithm(field, mono, syndrome, ecBytes)
	if err != nil {
		return err
	}

	numberOfErrors := sigma.Degree()
	errorLocations, err := findErrorLocations(sigma, field)
	if err != nil {
		return err
	}
	errorMagnitudes := findErrorMagnitudes(omega, field, errorLocations)

	for i := 0; i < numberOfErrors; i++ {
		position := len(toDecode) - 1 - int(field.logTable[errorLocations[i]])
		if position < 0 {
			return ErrReedSolomon
		}
		toDecode[position] = AddOrSubtract(toDecode[position], errorMagnitudes[i])
	}

	if fixedErrors != nil {
		*fixedErrors += numberOfErrors
	}
	return nil
}
