package config

// File represents the structure of the kcache.yaml configuration file.
// Pointer fields distinguish an omitted value from an explicit zero.
type File struct {
	Capacity        *int   `yaml:"capacity"`
	DuplicatePolicy string `yaml:"duplicate_policy"`
	Workers         *int   `yaml:"workers"`
	Routing         string `yaml:"routing"`
	LogFormat       string `yaml:"log_format"`
	CompileLatency  string `yaml:"compile_latency"`
}
