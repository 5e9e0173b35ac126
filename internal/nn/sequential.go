package nn

import (
	"github.com/born-ml/chainnet/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input. Every Sequential
// owns its modules, including recurrent state, so separate instances never
// interfere.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewFlatten(),
//	    nn.NewDense(16, 2, tensor.ReLU, backend),
//	)
//
//	output := model.Forward(input)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input

	for _, module := range s.modules {
		output = module.Forward(output)
	}

	return output
}

// Add appends a module to the sequence.
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Module(index int) Module {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// ResetState resets every stateful module, e.g. at the start of a new
// sequence.
func (s *Sequential) ResetState() {
	for _, module := range s.modules {
		if st, ok := module.(Stateful); ok {
			st.ResetState()
		}
	}
}

// Loaders returns the weight-bearing modules in order.
func (s *Sequential) Loaders() []WeightLoader {
	var loaders []WeightLoader
	for _, module := range s.modules {
		if l, ok := module.(WeightLoader); ok {
			loaders = append(loaders, l)
		}
	}
	return loaders
}
