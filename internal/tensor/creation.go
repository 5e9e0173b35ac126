package tensor

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros(Shape{3, 4}, backend)
func Zeros(shape Shape, b Backend) *Tensor {
	raw, err := NewRaw(shape)
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return New(raw, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full(Shape{3, 3}, 3.14, backend)
func Full(shape Shape, value float64, b Backend) *Tensor {
	t := Zeros(shape, b)
	for i := range t.raw.data {
		t.raw.data[i] = value
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, b Backend) *Tensor {
	return Full(shape, 1, b)
}

// Arange creates a rank-1 tensor holding 0, 1, ..., n-1.
func Arange(n int, b Backend) *Tensor {
	t := Zeros(Shape{n}, b)
	for i := range t.raw.data {
		t.raw.data[i] = float64(i)
	}
	return t
}
