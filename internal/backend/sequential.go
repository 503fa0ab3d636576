package backend

// SequentialName is the name of the default backend
const SequentialName = "sequential"

// Sequential uses plain loops; AddReduce is a strict left fold
type Sequential struct{}

func (Sequential) Name() string { return SequentialName }

func (Sequential) AddElementwise(a, b []float64) ([]float64, error) {
	if err := checkLengths(a, b); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out, nil
}

func (Sequential) AddReduce(xs []float64) (float64, error) {
	return foldLeft(xs), nil
}

func foldLeft(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum
}
