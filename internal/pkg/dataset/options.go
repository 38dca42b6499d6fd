package dataset

// Option to tune dataset loading.
type Option func(*options)

type options struct {
	Comma rune
}

func optionsWithDefaults(opts []Option) options {
	o := options{
		Comma: ',',
	}

	for _, apply := range opts {
		apply(&o)
	}

	return o
}

// WithComma sets the field delimiter of the input file.
//
// Defaults to ','.
func WithComma(comma rune) Option {
	return func(o *options) {
		if comma == 0 {
			return
		}

		o.Comma = comma
	}
}
