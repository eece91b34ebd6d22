package trace

// File represents a recorded workload trace on disk.
type File struct {
	Patterns []PatternDTO `yaml:"patterns"`
	Calls    []CallDTO    `yaml:"calls"`
}

// PatternDTO declares one recognized fusion pattern.
type PatternDTO struct {
	ID      int64             `yaml:"id"`
	Name    string            `yaml:"name"`
	Ops     []string          `yaml:"ops"`
	Attrs   map[string]string `yaml:"attrs"`
	Inputs  []TensorDTO       `yaml:"inputs"`
	Outputs []TensorDTO       `yaml:"outputs"`
}

// TensorDTO declares a logical tensor at a partition boundary.
// Either Dims or Rank may be given. Dims may contain -1 for a dim that is only
// known at call time; a bare Rank leaves every dim unknown.
type TensorDTO struct {
	DType string  `yaml:"dtype"`
	Rank  *int    `yaml:"rank"`
	Dims  []int64 `yaml:"dims"`
}

// CallDTO is one recorded call. Repeat expands the call in place.
type CallDTO struct {
	Pattern int64     `yaml:"pattern"`
	Inputs  [][]int64 `yaml:"inputs"`
	Outputs [][]int64 `yaml:"outputs"`
	Repeat  int       `yaml:"repeat"`
}
