package config

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

type (
	HeadersNumber struct {
		Default, Maximal int
	}

	HeadersSpace struct {
		Default, Maximal int
	}

	URIRequestLineSize struct {
		Default, Maximal int
	}
)

type (
	URI struct {
		// RequestLineSize bounds the buffer used to reassemble a request target or a
		// reason phrase which arrived in several pieces. Default is the preallocated
		// capacity, Maximal is the hard limit.
		RequestLineSize URIRequestLineSize
	}

	Headers struct {
		// Number is responsible for headers storage size.
		// Default value is an initial size of allocated headers storage.
		// Maximal value is maximum number of headers allowed to be presented in a single
		// section (trailers are counted separately). 0 disables the check.
		Number HeadersNumber `test:"nullable"`
		// Space limits the amount of memory occupied by the message head. The Maximal
		// value bounds the start line together with all the field lines, the Default
		// one is the initial capacity for buffers reassembling fragmented fields.
		Space HeadersSpace
		// MaxLineLength is the longest single line (start line or field line) the parser
		// accepts, line terminator excluded.
		MaxLineLength int
	}

	Body struct {
		// MaxSize describes the maximal size of a body, that can be accumulated by the
		// message collector. The streaming parser itself never buffers a body, so it
		// isn't affected.
		MaxSize uint64
		// Prealloc is the initial capacity of the body accumulator.
		Prealloc int
	}
)

// Config holds the limits of the parser and of the message collector built on top of it.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	URI     URI
	Headers Headers
	Body    Body
	// Strict rejects bare LF line terminators, requiring a CRLF everywhere.
	Strict bool `test:"nullable"`
}

// Default returns default config. Those are initially well-balanced, however maximal defaults
// are pretty permitting.
func Default() *Config {
	return &Config{
		URI: URI{
			RequestLineSize: URIRequestLineSize{
				Default: 2 * 1024,
				// allow at most 16kb of request line, which is effectively pretty much tolerant,
				// considering most web-entities limit it to 4-8kb.
				Maximal: 16 * 1024,
			},
		},
		Headers: Headers{
			Number: HeadersNumber{
				Default: 10,
				Maximal: 100,
			},
			Space: HeadersSpace{
				Default: 1 * 1024, // 1kb for headers must be fairly enough in most cases.
				// matches the HTTP_MAX_HEADER_SIZE of joyent http_parser
				Maximal: 80 * 1024,
			},
			MaxLineLength: 16 * 1024,
		},
		Body: Body{
			MaxSize:  512 * 1024 * 1024, // 512 megabytes
			Prealloc: 1024,
		},
	}
}

// Load decodes JSON overrides from r on top of the defaults. Fields missing in the
// document keep their default values.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
