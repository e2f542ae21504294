package internal

// FnModeOptions selects how a device client behaves once, at construction.
type FnModeOptions struct {
	Debug bool
	Mock  bool
}

type FnModeOption func(*FnModeOptions)

func WithDebug(debug bool) FnModeOption {
	return func(opts *FnModeOptions) {
		opts.Debug = debug
	}
}

// WithMock selects the simulated client instead of talking to hardware.
func WithMock(mock bool) FnModeOption {
	return func(opts *FnModeOptions) {
		opts.Mock = mock
	}
}

func NewModeOptions(options ...FnModeOption) *FnModeOptions {
	opts := &FnModeOptions{
		Debug: false,
		Mock:  false,
	}
	for _, option := range options {
		option(opts)
	}
	return opts
}
