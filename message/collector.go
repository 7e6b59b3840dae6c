package message

import (
	"errors"
	"math"

	"github.com/indigo-web/httpparser/config"
	"github.com/indigo-web/httpparser/internal/buffer"
	"github.com/indigo-web/httpparser/kv"
	"github.com/indigo-web/httpparser/parser"
	"go.uber.org/zap"
)

var (
	ErrURLTooLong      = errors.New("request target or reason phrase is too long")
	ErrHeadersTooLarge = errors.New("header fields occupy too much space")
	ErrBodyTooLarge    = errors.New("message body is too large")
)

type section uint8

const (
	sectionNone section = iota
	sectionField
	sectionValue
)

type Option func(c *Collector)

// WithLogger sets the logger the failures are reported to. Defaults to a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Collector) {
		c.log = logger
	}
}

// OnHeaders sets a callback invoked once the head of a message is collected. The message
// has no body yet. Returning parser.ErrSkipBody or parser.ErrSkipBodyUpgrade has the same
// effect as returning them from the parser's OnHeadersComplete, any other error aborts.
func OnHeaders(fn func(m *Message) error) Option {
	return func(c *Collector) {
		c.onHeaders = fn
	}
}

// OnMessage sets a callback invoked for every complete message.
func OnMessage(fn func(m *Message) error) Option {
	return func(c *Collector) {
		c.onMessage = fn
	}
}

// Collector drives a parser, assembling the runs it reports into Messages.
type Collector struct {
	parser    *parser.Parser
	cfg       *config.Config
	log       *zap.Logger
	onHeaders func(m *Message) error
	onMessage func(m *Message) error

	msg     Message
	line    buffer.Buffer
	fields  buffer.Buffer
	body    buffer.Buffer
	maxBody uint64
	section section
	key     string
	// storage receives the fields, switched to the trailers once the head is complete
	storage *kv.Storage
}

func NewCollector(mode parser.Mode, cfg *config.Config, opts ...Option) *Collector {
	if cfg == nil {
		cfg = config.Default()
	}

	c := &Collector{
		cfg: cfg,
		log: zap.NewNop(),
		msg: newMessage(cfg.Headers.Number.Default),
		line: buffer.New(
			cfg.URI.RequestLineSize.Default,
			cfg.URI.RequestLineSize.Maximal,
		),
		fields: buffer.New(
			cfg.Headers.Space.Default,
			cfg.Headers.Space.Maximal,
		),
		body:    buffer.New(cfg.Body.Prealloc, bodyLimit(cfg.Body.MaxSize)),
		maxBody: cfg.Body.MaxSize,
	}
	c.storage = c.msg.Headers

	for _, opt := range opts {
		opt(c)
	}

	c.parser = parser.New(c, mode, cfg)

	return c
}

func bodyLimit(maxSize uint64) int {
	if maxSize == 0 || maxSize > math.MaxInt {
		return math.MaxInt
	}

	return int(maxSize)
}

// Parser returns the underlying parser, e.g. to check whether the connection was upgraded.
func (c *Collector) Parser() *parser.Parser {
	return c.parser
}

// Feed parses the data, returning the number of bytes consumed. See parser.Parser.Execute
// for the meaning of the values.
func (c *Collector) Feed(data []byte) (int, error) {
	n, err := c.parser.Execute(data)
	if err != nil && !errors.Is(err, parser.ErrPaused) {
		c.log.Debug("failed to parse the message",
			zap.Error(err),
			zap.String("errno", c.parser.ErrorName()),
			zap.Int("consumed", n),
			zap.Stringer("mode", c.parser.Mode()),
		)
	}

	return n, err
}

// Finish signals the end of the stream.
func (c *Collector) Finish() error {
	err := c.parser.Finish()
	if err != nil && !errors.Is(err, parser.ErrPaused) {
		c.log.Debug("stream ended unexpectedly",
			zap.Error(err),
			zap.String("errno", c.parser.ErrorName()),
		)
	}

	return err
}

func (c *Collector) OnMessageBegin() error {
	c.line.Clear()
	c.fields.Clear()
	c.body.Clear()
	c.msg.reset()
	c.section = sectionNone
	c.key = ""
	c.storage = c.msg.Headers

	return nil
}

func (c *Collector) OnURL(span []byte) error {
	if !c.line.Append(span) {
		return ErrURLTooLong
	}

	return nil
}

func (c *Collector) OnStatus(span []byte) error {
	if !c.line.Append(span) {
		return ErrURLTooLong
	}

	return nil
}

func (c *Collector) OnHeaderField(span []byte) error {
	if c.section == sectionValue {
		c.flushField()
	}

	c.section = sectionField
	if !c.fields.Append(span) {
		return ErrHeadersTooLarge
	}

	return nil
}

func (c *Collector) OnHeaderValue(span []byte) error {
	if c.section == sectionField {
		c.key = c.fields.FinishString()
		c.section = sectionValue
	}

	if !c.fields.Append(span) {
		return ErrHeadersTooLarge
	}

	return nil
}

func (c *Collector) flushField() {
	c.storage.Add(c.key, c.fields.FinishString())
	c.section = sectionNone
}

func (c *Collector) OnHeadersComplete() error {
	if c.section == sectionValue {
		c.flushField()
	}

	p := c.parser
	c.msg.Kind = p.Kind()
	c.msg.Major, c.msg.Minor = p.Major(), p.Minor()
	c.msg.Proto = p.Proto()
	c.msg.KeepAlive = p.ShouldKeepAlive()
	c.msg.Upgrade = p.Upgrade()
	c.msg.Chunked = p.Chunked()
	if c.msg.Kind == parser.Request {
		c.msg.Method = p.Method()
		c.msg.URL = c.line.FinishString()
	} else {
		c.msg.Status = p.StatusCode()
		c.msg.Reason = c.line.FinishString()
	}

	c.storage = c.msg.Trailers

	if c.onHeaders == nil {
		return nil
	}

	err := c.onHeaders(&c.msg)
	if errors.Is(err, parser.ErrSkipBodyUpgrade) {
		c.msg.Upgrade = true
	}

	return err
}

func (c *Collector) OnBody(span []byte) error {
	if !c.body.Append(span) {
		c.log.Debug("body exceeds the limit",
			zap.Uint64("limit", c.maxBody),
			zap.Int("collected", c.body.Len()),
		)

		return ErrBodyTooLarge
	}

	return nil
}

func (c *Collector) OnMessageComplete() error {
	if c.section == sectionValue {
		c.flushField()
	}

	c.msg.Body = c.body.Finish()
	// keep-alive may be decided only after the body, e.g. for the one delimited by EOF
	c.msg.KeepAlive = c.parser.ShouldKeepAlive()

	c.log.Debug("message collected",
		zap.Stringer("kind", c.msg.Kind),
		zap.Stringer("proto", c.msg.Proto),
		zap.Int("headers", c.msg.Headers.Len()),
		zap.Int("trailers", c.msg.Trailers.Len()),
		zap.Int("body", len(c.msg.Body)),
	)

	if c.onMessage == nil {
		return nil
	}

	return c.onMessage(&c.msg)
}

// Collect parses every message found in the data, considering it the whole stream.
// Messages parsed before an error are returned along with it.
func Collect(mode parser.Mode, data []byte) (msgs []*Message, err error) {
	c := NewCollector(mode, nil, OnMessage(func(m *Message) error {
		msgs = append(msgs, m.Clone())
		return nil
	}))

	if _, err = c.Feed(data); err != nil {
		return msgs, err
	}

	return msgs, c.Finish()
}
