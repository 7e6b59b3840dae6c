package parser

import (
	"math"

	"github.com/indigo-web/httpparser/internal/chars"
)

// fieldBegin resets the recognition state for a new field line.
func (p *Parser) fieldBegin(c byte) {
	p.hstate = hGeneral
	p.nameLen = 0
	p.nameOverflow = false
	p.valueEmitted = false
	p.dropWithheld()
	p.nameByte(c)
}

func (p *Parser) nameByte(c byte) {
	if p.nameOverflow {
		return
	}

	if int(p.nameLen) == len(p.name) {
		p.nameOverflow = true
		return
	}

	p.name[p.nameLen] = chars.Lower(c)
	p.nameLen++
}

// classifyField recognizes the headers affecting the framing and the connection.
// Trailer fields are never recognized.
func (p *Parser) classifyField() Errno {
	p.hstate = hGeneral
	if p.nameOverflow || p.flags&fTrailing != 0 {
		return OK
	}

	switch string(p.name[:p.nameLen]) {
	case "content-length":
		if p.flags&fContentLength != 0 {
			return ErrUnexpectedContentLength
		}

		p.flags |= fContentLength
		p.contentLength = 0
		p.lenState = clNone
		p.hstate = hContentLength
	case "transfer-encoding":
		p.flags |= fTransferEncoding
		p.hstate = hTransferEncoding
		p.tokenBegin()
	case "connection", "proxy-connection":
		p.hstate = hConnection
		p.tokenBegin()
	case "upgrade":
		p.flags |= fUpgrade
	}

	return OK
}

// valueByte feeds a byte of the field value to the recognizer of the current header.
// Folded line breaks are fed as a single SP.
func (p *Parser) valueByte(c byte) Errno {
	switch p.hstate {
	case hContentLength:
		return p.lengthByte(c)
	case hTransferEncoding, hConnection:
		p.tokenByte(c)
	}

	return OK
}

func (p *Parser) lengthByte(c byte) Errno {
	switch {
	case chars.IsDigit(c):
		if p.lenState == clDone {
			return ErrInvalidContentLength
		}

		d := uint64(c - '0')
		if p.contentLength > (math.MaxUint64-d)/10 {
			return ErrInvalidContentLength
		}

		p.contentLength = p.contentLength*10 + d
		p.lenState = clDigits
	case chars.IsSpace(c):
		if p.lenState == clDigits {
			p.lenState = clDone
		}
	default:
		return ErrInvalidContentLength
	}

	return OK
}

func (p *Parser) tokenBegin() {
	p.tokenLen = 0
	p.tokState = tokNone
}

// tokenByte splits a comma-separated list into elements, lower-casing them. Element
// parameters are ignored.
func (p *Parser) tokenByte(c byte) {
	switch {
	case c == ',':
		p.commitToken()
		p.tokenBegin()
	case p.tokState == tokParams || p.tokState == tokBad:
	case chars.IsSpace(c):
		if p.tokState == tokIn {
			p.tokState = tokDone
		}
	case c == ';':
		if p.tokState == tokNone {
			p.tokState = tokBad
		} else {
			p.tokState = tokParams
		}
	case p.tokState == tokDone:
		p.tokState = tokBad
	default:
		if int(p.tokenLen) == len(p.token) {
			p.tokState = tokBad
			return
		}

		p.token[p.tokenLen] = chars.Lower(c)
		p.tokenLen++
		p.tokState = tokIn
	}
}

func (p *Parser) commitToken() {
	if p.tokState == tokNone {
		// empty list elements are allowed and ignored
		return
	}

	var token string
	if p.tokState != tokBad {
		token = string(p.token[:p.tokenLen])
	}

	switch p.hstate {
	case hTransferEncoding:
		switch token {
		case "chunked":
			p.flags |= fChunked
		case "identity":
		default:
			p.flags |= fUnknownCoding
			p.flags &^= fChunked
		}
	case hConnection:
		switch token {
		case "close":
			p.flags |= fConnClose
		case "keep-alive":
			p.flags |= fConnKeepAlive
		case "upgrade":
			p.flags |= fConnUpgrade
		}
	}
}

// fieldEnd completes the value of the current header.
func (p *Parser) fieldEnd() Errno {
	switch p.hstate {
	case hContentLength:
		if p.lenState == clNone {
			return ErrInvalidContentLength
		}
	case hTransferEncoding, hConnection:
		p.commitToken()
	}

	p.hstate = hGeneral
	p.dropWithheld()

	return OK
}

// withhold keeps back whitespace at the end of the data, as it might turn out to be the
// end of the value. Only SP and HTAB get here, so a bit per byte is enough: a set one
// stands for HTAB. The run is bounded by the line length limit.
func (p *Parser) withhold(ws []byte) {
	for _, c := range ws {
		word, bit := p.wsLen/64, uint(p.wsLen%64)
		if word == len(p.withheld) {
			p.withheld = append(p.withheld, 0)
		}

		if c == '\t' {
			p.withheld[word] |= 1 << bit
		} else {
			p.withheld[word] &^= 1 << bit
		}

		p.wsLen++
	}
}

// releaseWithheld emits the held back whitespace, which turned out to be a part of
// the value. If the parser is paused in between, the rest is kept for the next call.
func (p *Parser) releaseWithheld() Errno {
	for p.wsReleased < p.wsLen {
		n := min(p.wsLen-p.wsReleased, len(p.wsScratch))
		for j := range n {
			pos := p.wsReleased + j
			p.wsScratch[j] = ' '
			if p.withheld[pos/64]&(1<<uint(pos%64)) != 0 {
				p.wsScratch[j] = '\t'
			}
		}

		p.wsReleased += n
		if p.wsReleased == p.wsLen {
			p.dropWithheld()
		}

		if e := p.emitValue(p.wsScratch[:n]); e != OK {
			return e
		}
	}

	return OK
}

func (p *Parser) dropWithheld() {
	p.wsLen, p.wsReleased = 0, 0
}

func (p *Parser) emitValue(span []byte) Errno {
	p.valueEmitted = true
	return p.cb(ErrCBHeaderValue, p.handler.OnHeaderValue(span))
}
