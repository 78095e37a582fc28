package mechanism

// Standard atomic weights [g/mol].
var atomicWeights = map[string]float64{
	"H":  1.00794,
	"He": 4.002602,
	"C":  12.0107,
	"N":  14.0067,
	"O":  15.9994,
	"Ar": 39.948,
}

// AtomicWeight returns the atomic weight of element in kg/mol.
func AtomicWeight(element string) (float64, bool) {
	w, ok := atomicWeights[element]
	return w * 1e-3, ok
}
