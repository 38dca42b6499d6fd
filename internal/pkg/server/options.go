package server

// Option to tune the HTTP server.
type Option func(*options)

type options struct {
	Addr string
}

const defaultAddr = "localhost:8080"

func optionsWithDefaults(opts []Option) options {
	o := options{
		Addr: defaultAddr,
	}

	for _, apply := range opts {
		apply(&o)
	}

	return o
}

// WithAddr sets the listening address.
//
// Defaults to localhost:8080.
func WithAddr(addr string) Option {
	return func(o *options) {
		if addr == "" {
			return
		}

		o.Addr = addr
	}
}
