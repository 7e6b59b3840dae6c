// Command h1dump parses an HTTP/1.x stream and prints every parser event as a JSON line.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/indigo-web/httpparser/config"
	"github.com/indigo-web/httpparser/internal/events"
	"github.com/indigo-web/httpparser/parser"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var (
	modeFlag   = flag.String("mode", "both", "request, response or both")
	chunkSize  = flag.Int("chunk", 4096, "feed the parser by parts of this size")
	configPath = flag.String("config", "", "path to a JSON config")
	strict     = flag.Bool("strict", false, "reject bare LF line endings")
	debug      = flag.Bool("debug", false, "verbose logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log := newLogger(*debug)
	err := run(log)
	if err != nil {
		log.Error("dump failed", zap.Error(err))
	}

	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger(debug bool) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}

	return log
}

func run(log *zap.Logger) error {
	mode, err := parseMode(*modeFlag)
	if err != nil {
		return err
	}

	if *chunkSize <= 0 {
		return fmt.Errorf("bad chunk size: %d", *chunkSize)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	cfg.Strict = cfg.Strict || *strict

	var input io.Reader = os.Stdin
	if name := flag.Arg(0); name != "" {
		file, err := os.Open(name)
		if err != nil {
			return err
		}
		defer file.Close()
		input = file
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	return dump(log, input, out, mode, cfg, *chunkSize)
}

func parseMode(s string) (parser.Mode, error) {
	switch s {
	case "request", "req":
		return parser.Request, nil
	case "response", "resp":
		return parser.Response, nil
	case "both", "":
		return parser.Both, nil
	default:
		return 0, fmt.Errorf("unknown mode: %q", s)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return config.Load(file)
}

// dump feeds the parser by parts of chunk bytes, writing the events into out.
func dump(
	log *zap.Logger, input io.Reader, out io.Writer, mode parser.Mode, cfg *config.Config, chunk int,
) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	rec, p := events.New(mode, cfg)
	var encErr error
	rec.OnEvent = func(ev events.Event) {
		if encErr == nil {
			encErr = enc.Encode(ev)
		}
	}

	buff := make([]byte, chunk)
	var total int
	for {
		n, readErr := input.Read(buff)
		data := buff[:n]
		for len(data) > 0 {
			consumed, err := p.Execute(data)
			total += consumed
			data = data[consumed:]
			rec.Events = rec.Events[:0]

			switch {
			case encErr != nil:
				return encErr
			case errors.Is(err, parser.ErrPaused):
				p.Resume()
			case err != nil:
				log.Error("malformed stream",
					zap.String("errno", p.ErrorName()),
					zap.Int("offset", total),
				)
				return err
			case len(data) > 0:
				// the parser stops short without an error only once the connection is upgraded
				log.Info("connection upgraded",
					zap.Int("offset", total),
					zap.Int("leftover", len(data)),
				)
				return nil
			}
		}

		switch {
		case readErr == io.EOF:
			err := p.Finish()
			if encErr != nil {
				return encErr
			}

			return err
		case readErr != nil:
			return readErr
		}
	}
}
