package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the number of workers decoding atlas pages. Values below 1 are ignored.
//
// Parameters:
//   - n: the maximum number of concurrent page decodes
//
// Returns:
//   - LoaderBuilderOption: a function that applies the workers option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n >= 1 {
			l.workers = n
		}
	}
}

// WithFileReader replaces ReadFile as the source of every asset read.
//
// Parameters:
//   - read: returns the contents of a plain or packed path
//
// Returns:
//   - LoaderBuilderOption: a function that applies the file reader option to a loader
func WithFileReader(read func(path string) ([]byte, error)) LoaderBuilderOption {
	return func(l *loader) {
		if read != nil {
			l.readFile = read
		}
	}
}
