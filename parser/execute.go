package parser

import (
	"github.com/indigo-web/httpparser/http/method"
	"github.com/indigo-web/httpparser/http/status"
	"github.com/indigo-web/httpparser/internal/chars"
	"github.com/indigo-web/utils/uf"
)

const versionPrefix = "HTTP/"

var foldSpace = []byte{' '}

// Execute consumes the data, invoking the callbacks for everything recognized in it.
// It returns the number of bytes consumed, which is len(data) unless parsing stopped
// early:
//   - on a parsing error, n is the position of the offending byte;
//   - when a callback paused the parser, n counts the bytes up to and including the
//     one which triggered the callback, and the error is ErrPaused;
//   - when the message upgraded the connection, n counts the bytes up to its end. The
//     rest of the data belongs to the new protocol and the error is nil.
//
// Once failed, the parser consumes nothing and keeps returning the same error until
// it's initialized again.
func (p *Parser) Execute(data []byte) (int, error) {
	if p.errno != OK {
		return 0, p.err
	}

	if p.paused {
		return 0, ErrPaused
	}

	if e := p.settle(); e != OK {
		return p.stop(0, e)
	}

	if len(data) == 0 {
		return 0, nil
	}

	var (
		strict    = p.cfg.Strict
		maxHead   = p.cfg.Headers.Space.Maximal
		maxLine   = p.cfg.Headers.MaxLineLength
		maxFields = p.cfg.Headers.Number.Maximal

		// marks of runs started but not yet reported
		urlMark, statusMark, fieldMark, valueMark = -1, -1, -1, -1
		// beginning of the whitespace which may turn out to be trailing
		wsMark = -1
	)

	switch p.state {
	case eReqURL:
		urlMark = 0
	case eResStatus:
		statusMark = 0
	case eHeaderField:
		fieldMark = 0
	case eHeaderValue:
		valueMark = 0
	}

	for i := 0; i < len(data); i++ {
		c := data[i]

		if p.state.head() {
			p.nread++
			if c != '\r' && c != '\n' {
				p.lineLen++
			}

			if maxHead > 0 && p.nread > maxHead {
				return p.stop(i, ErrHeaderOverflow)
			}

			if maxLine > 0 && p.lineLen > maxLine {
				return p.stop(i, ErrHeaderLineOverflow)
			}
		}

	reexecute:
		switch p.state {
		case eUpgraded:
			return i, nil
		case eClosed:
			if c != '\r' && c != '\n' {
				return p.stop(i, ErrClosedConnection)
			}

		case eStartReqOrRes:
			switch {
			case c == '\r' || c == '\n':
			case c == 'H':
				p.beginMessage()
				p.methodBuf[0] = c
				p.methodLen = 1
				p.state = eReqOrResH
				if e := p.cb(ErrCBMessageBegin, p.handler.OnMessageBegin()); e != OK {
					return p.stop(i+1, e)
				}
			default:
				p.kind = Request
				p.state = eStartReq
				goto reexecute
			}
		case eReqOrResH:
			if c == 'T' {
				p.kind = Response
				p.index = 2
				p.state = eResVersion
				break
			}

			p.kind = Request
			p.state = eReqMethod
			goto reexecute

		case eStartReq:
			switch {
			case c == '\r' || c == '\n':
			case chars.IsToken(c):
				p.beginMessage()
				p.methodBuf[0] = c
				p.methodLen = 1
				p.state = eReqMethod
				if e := p.cb(ErrCBMessageBegin, p.handler.OnMessageBegin()); e != OK {
					return p.stop(i+1, e)
				}
			default:
				return p.stop(i, ErrInvalidMethod)
			}
		case eReqMethod:
			switch {
			case c == ' ':
				p.method = method.Parse(uf.B2S(p.methodBuf[:p.methodLen]))
				if p.method == method.Unknown {
					return p.stop(i, ErrInvalidMethod)
				}

				p.state = eReqURLStart
			case chars.IsToken(c) && int(p.methodLen) < len(p.methodBuf):
				p.methodBuf[p.methodLen] = c
				p.methodLen++
			default:
				return p.stop(i, ErrInvalidMethod)
			}
		case eReqURLStart:
			switch {
			case c == '/' || c == '*' || chars.IsAlpha(c):
			case p.method == method.CONNECT && chars.IsURL(c):
			default:
				return p.stop(i, ErrInvalidURL)
			}

			urlMark = i
			p.state = eReqURL
		case eReqURL:
			switch {
			case c == ' ':
				p.index = 0
				p.state = eReqVersion
				if e := p.emitURL(data[urlMark:i]); e != OK {
					return p.stop(i+1, e)
				}

				urlMark = -1
			case c == '\r' || c == '\n':
				return p.stop(i, ErrInvalidVersion)
			case !chars.IsURL(c):
				return p.stop(i, ErrInvalidURL)
			}
		case eReqVersion:
			if c != versionPrefix[p.index] {
				return p.stop(i, ErrInvalidVersion)
			}

			if p.index++; p.index == len(versionPrefix) {
				p.state = eReqMajor
			}
		case eReqMajor:
			if !chars.IsDigit(c) {
				return p.stop(i, ErrInvalidVersion)
			}

			p.major = c - '0'
			p.state = eReqDot
		case eReqDot:
			if c != '.' {
				return p.stop(i, ErrInvalidVersion)
			}

			p.state = eReqMinor
		case eReqMinor:
			if !chars.IsDigit(c) {
				return p.stop(i, ErrInvalidVersion)
			}

			p.minor = c - '0'
			p.state = eReqLineEnd
		case eReqLineEnd:
			switch c {
			case '\r':
				p.state = eReqLineAlmostDone
			case '\n':
				if strict {
					return p.stop(i, ErrStrict)
				}

				p.state = eReqLineAlmostDone
				goto reexecute
			default:
				return p.stop(i, ErrInvalidVersion)
			}
		case eReqLineAlmostDone, eResLineAlmostDone:
			if c != '\n' {
				return p.stop(i, ErrLFExpected)
			}

			p.lineLen = 0
			p.state = eHeaderFieldStart

		case eStartRes:
			switch c {
			case '\r', '\n':
			case 'H':
				p.beginMessage()
				p.index = 1
				p.state = eResVersion
				if e := p.cb(ErrCBMessageBegin, p.handler.OnMessageBegin()); e != OK {
					return p.stop(i+1, e)
				}
			default:
				return p.stop(i, ErrInvalidConstant)
			}
		case eResVersion:
			if c != versionPrefix[p.index] {
				return p.stop(i, ErrInvalidConstant)
			}

			if p.index++; p.index == len(versionPrefix) {
				p.state = eResMajor
			}
		case eResMajor:
			if !chars.IsDigit(c) {
				return p.stop(i, ErrInvalidVersion)
			}

			p.major = c - '0'
			p.state = eResDot
		case eResDot:
			if c != '.' {
				return p.stop(i, ErrInvalidVersion)
			}

			p.state = eResMinor
		case eResMinor:
			if !chars.IsDigit(c) {
				return p.stop(i, ErrInvalidVersion)
			}

			p.minor = c - '0'
			p.state = eResCodeStart
		case eResCodeStart:
			if c != ' ' {
				return p.stop(i, ErrInvalidVersion)
			}

			p.index = 0
			p.statusCode = 0
			p.state = eResCode
		case eResCode:
			if !chars.IsDigit(c) {
				return p.stop(i, ErrInvalidStatus)
			}

			p.statusCode = p.statusCode*10 + status.Code(c-'0')
			if p.index++; p.index == 3 {
				p.state = eResCodeEnd
			}
		case eResCodeEnd:
			switch c {
			case ' ':
				statusMark = i + 1
				p.state = eResStatus
			case '\r':
				p.state = eResLineAlmostDone
			case '\n':
				if strict {
					return p.stop(i, ErrStrict)
				}

				p.state = eResLineAlmostDone
				goto reexecute
			default:
				return p.stop(i, ErrInvalidStatus)
			}
		case eResStatus:
			switch {
			case c == '\r' || c == '\n':
				if c == '\n' && strict {
					return p.stop(i, ErrStrict)
				}

				p.state = eResLineAlmostDone
				if c == '\n' {
					p.lineLen = 0
					p.state = eHeaderFieldStart
				}

				if e := p.emitStatus(data[statusMark:i]); e != OK {
					return p.stop(i+1, e)
				}

				statusMark = -1
			case !chars.IsValue(c):
				return p.stop(i, ErrInvalidStatus)
			}

		case eHeaderFieldStart:
			switch {
			case c == '\r':
				p.state = eHeadersAlmostDone
			case c == '\n':
				if strict {
					return p.stop(i, ErrStrict)
				}

				p.state = eHeadersAlmostDone
				goto reexecute
			case chars.IsToken(c):
				if p.fields++; maxFields > 0 && p.fields > maxFields {
					return p.stop(i, ErrTooManyHeaders)
				}

				p.fieldBegin(c)
				fieldMark = i
				p.state = eHeaderField
			default:
				return p.stop(i, ErrInvalidHeaderToken)
			}
		case eHeaderField:
			switch {
			case chars.IsToken(c):
				p.nameByte(c)
			case c == ':':
				if e := p.classifyField(); e != OK {
					return p.stop(i, e)
				}

				p.state = eHeaderValueDiscardWS
				if e := p.emitField(data[fieldMark:i]); e != OK {
					return p.stop(i+1, e)
				}

				fieldMark = -1
			default:
				return p.stop(i, ErrInvalidHeaderToken)
			}
		case eHeaderValueDiscardWS:
			switch {
			case chars.IsSpace(c):
			case c == '\r':
				p.state = eHeaderValueDiscardWSAlmostDone
			case c == '\n':
				if strict {
					return p.stop(i, ErrStrict)
				}

				p.state = eHeaderValueDiscardWSAlmostDone
				goto reexecute
			case chars.IsValue(c):
				valueMark, wsMark = i, -1
				p.state = eHeaderValue
				goto reexecute
			default:
				return p.stop(i, ErrInvalidHeaderToken)
			}
		case eHeaderValueDiscardWSAlmostDone:
			if c != '\n' {
				return p.stop(i, ErrLFExpected)
			}

			p.lineLen = 0
			p.state = eHeaderValueDiscardLWS
		case eHeaderValueDiscardLWS, eHeaderValueLWS:
			if chars.IsSpace(c) {
				// obsolete line folding
				if p.state == eHeaderValueDiscardLWS {
					p.state = eHeaderValueDiscardWS
				} else {
					p.state = eHeaderValueFold
				}

				break
			}

			if e := p.fieldEnd(); e != OK {
				return p.stop(i, e)
			}

			p.state = eHeaderFieldStart
			if !p.valueEmitted {
				if e := p.emitValue(data[i:i]); e != OK {
					return p.stop(i, e)
				}
			}

			goto reexecute
		case eHeaderValue:
			switch {
			case c == '\r' || c == '\n':
				if c == '\n' && strict {
					return p.stop(i, ErrStrict)
				}

				end := i
				if wsMark >= 0 {
					end = wsMark
				}

				span := data[valueMark:end]
				valueMark, wsMark = -1, -1
				p.dropWithheld()
				p.state = eHeaderAlmostDone
				if c == '\n' {
					p.lineLen = 0
					p.state = eHeaderValueLWS
				}

				if len(span) > 0 {
					if e := p.emitValue(span); e != OK {
						return p.stop(i+1, e)
					}
				}
			case chars.IsSpace(c):
				if wsMark < 0 {
					wsMark = i
				}

				if e := p.valueByte(c); e != OK {
					return p.stop(i, e)
				}
			case chars.IsValue(c):
				// the whitespace held back from the previous data wasn't trailing. The
				// whitespace of this data between valueMark and i is reported again if
				// the parser is paused here.
				if e := p.releaseWithheld(); e != OK {
					return p.stop(valueMark, e)
				}

				wsMark = -1
				if e := p.valueByte(c); e != OK {
					return p.stop(i, e)
				}
			default:
				return p.stop(i, ErrInvalidHeaderToken)
			}
		case eHeaderAlmostDone:
			if c != '\n' {
				return p.stop(i, ErrLFExpected)
			}

			p.lineLen = 0
			p.state = eHeaderValueLWS
		case eHeaderValueFold:
			switch {
			case chars.IsSpace(c):
			case c == '\r':
				p.state = eHeaderAlmostDone
			case c == '\n':
				if strict {
					return p.stop(i, ErrStrict)
				}

				p.state = eHeaderAlmostDone
				goto reexecute
			case chars.IsValue(c):
				if e := p.valueByte(' '); e != OK {
					return p.stop(i, e)
				}

				valueMark, wsMark = i, -1
				p.state = eHeaderValue
				if e := p.emitValue(foldSpace); e != OK {
					return p.stop(i, e)
				}

				goto reexecute
			default:
				return p.stop(i, ErrInvalidHeaderToken)
			}
		case eHeadersAlmostDone:
			if c != '\n' {
				return p.stop(i, ErrLFExpected)
			}

			if p.flags&fTrailing != 0 {
				p.state = eMessageDone
				if p.chunks != nil {
					if e := p.cb(ErrCBChunkComplete, p.chunks.OnChunkComplete()); e != OK {
						return p.stop(i+1, e)
					}
				}
			} else {
				if e := p.checkFraming(); e != OK {
					return p.stop(i, e)
				}

				p.state = eHeadersDone
			}

			if e := p.settle(); e != OK {
				return p.stop(i+1, e)
			}

			if p.state == eUpgraded {
				return i + 1, nil
			}

		case eBodyIdentity:
			n := min(uint64(len(data)-i), p.contentLength)
			span := data[i : i+int(n)]
			p.contentLength -= n
			i += int(n) - 1
			if p.contentLength == 0 {
				p.state = eMessageDone
			}

			if e := p.cb(ErrCBBody, p.handler.OnBody(span)); e != OK {
				return p.stop(i+1, e)
			}

			if p.state == eMessageDone {
				if e := p.settle(); e != OK {
					return p.stop(i+1, e)
				}

				if p.state == eUpgraded {
					return i + 1, nil
				}
			}
		case eBodyIdentityEOF:
			span := data[i:]
			i = len(data) - 1
			if e := p.cb(ErrCBBody, p.handler.OnBody(span)); e != OK {
				return p.stop(len(data), e)
			}

		case eChunkSizeStart:
			v, ok := chars.Halfbyte(c)
			if !ok {
				return p.stop(i, ErrInvalidChunkSize)
			}

			p.contentLength = uint64(v)
			p.chunkDigits = 0
			if v != 0 {
				p.chunkDigits = 1
			}

			p.lineLen = 1
			p.state = eChunkSize
		case eChunkSize:
			if v, ok := chars.Halfbyte(c); ok {
				if p.contentLength != 0 || v != 0 {
					p.chunkDigits++
				}

				if p.chunkDigits > maxChunkSizeDigits {
					return p.stop(i, ErrInvalidChunkSize)
				}

				p.contentLength = p.contentLength<<4 | uint64(v)
				break
			}

			switch c {
			case ';':
				p.state = eChunkExt
			case ' ', '\t':
				p.state = eChunkSizeWS
			case '\r':
				p.state = eChunkSizeAlmostDone
			case '\n':
				if strict {
					return p.stop(i, ErrStrict)
				}

				p.state = eChunkSizeAlmostDone
				goto reexecute
			default:
				return p.stop(i, ErrInvalidChunkSize)
			}
		case eChunkSizeWS:
			switch c {
			case ' ', '\t':
			case ';':
				p.state = eChunkExt
			case '\r':
				p.state = eChunkSizeAlmostDone
			case '\n':
				if strict {
					return p.stop(i, ErrStrict)
				}

				p.state = eChunkSizeAlmostDone
				goto reexecute
			default:
				return p.stop(i, ErrInvalidChunkSize)
			}
		case eChunkExt:
			switch {
			case c == '\r':
				p.state = eChunkSizeAlmostDone
			case c == '\n':
				if strict {
					return p.stop(i, ErrStrict)
				}

				p.state = eChunkSizeAlmostDone
				goto reexecute
			case !chars.IsValue(c):
				return p.stop(i, ErrInvalidChunkSize)
			}

			if p.lineLen++; maxLine > 0 && p.lineLen > maxLine {
				return p.stop(i, ErrHeaderLineOverflow)
			}
		case eChunkSizeAlmostDone:
			if c != '\n' {
				return p.stop(i, ErrLFExpected)
			}

			size := p.contentLength
			if size == 0 {
				p.flags |= fTrailing
				p.nread, p.lineLen, p.fields = 0, 0, 0
				p.state = eHeaderFieldStart
			} else {
				p.state = eChunkData
			}

			if p.chunks != nil {
				if e := p.cb(ErrCBChunkHeader, p.chunks.OnChunkHeader(size)); e != OK {
					return p.stop(i+1, e)
				}
			}
		case eChunkData:
			n := min(uint64(len(data)-i), p.contentLength)
			span := data[i : i+int(n)]
			p.contentLength -= n
			i += int(n) - 1
			if p.contentLength == 0 {
				p.state = eChunkDataAlmostDone
			}

			if e := p.cb(ErrCBBody, p.handler.OnBody(span)); e != OK {
				return p.stop(i+1, e)
			}
		case eChunkDataAlmostDone:
			switch c {
			case '\r':
				p.state = eChunkDataDone
			case '\n':
				if strict {
					return p.stop(i, ErrStrict)
				}

				p.state = eChunkDataDone
				goto reexecute
			default:
				return p.stop(i, ErrInvalidChunkSize)
			}
		case eChunkDataDone:
			if c != '\n' {
				return p.stop(i, ErrLFExpected)
			}

			p.state = eChunkSizeStart
			if p.chunks != nil {
				if e := p.cb(ErrCBChunkComplete, p.chunks.OnChunkComplete()); e != OK {
					return p.stop(i+1, e)
				}
			}
		default:
			panic("unreachable code")
		}
	}

	// report the runs cut by the end of the data
	switch p.state {
	case eReqURL:
		if e := p.emitURL(data[urlMark:]); e != OK {
			return p.stop(len(data), e)
		}
	case eResStatus:
		if e := p.emitStatus(data[statusMark:]); e != OK {
			return p.stop(len(data), e)
		}
	case eHeaderField:
		if e := p.emitField(data[fieldMark:]); e != OK {
			return p.stop(len(data), e)
		}
	case eHeaderValue:
		span := data[valueMark:]
		if wsMark >= 0 {
			p.withhold(data[wsMark:])
			span = data[valueMark:wsMark]
		}

		if len(span) > 0 {
			if e := p.emitValue(span); e != OK {
				return p.stop(len(data), e)
			}
		}
	}

	return len(data), nil
}

func (p *Parser) emitURL(span []byte) Errno {
	if len(span) == 0 {
		return OK
	}

	return p.cb(ErrCBURL, p.handler.OnURL(span))
}

func (p *Parser) emitStatus(span []byte) Errno {
	if len(span) == 0 || p.status == nil {
		return OK
	}

	return p.cb(ErrCBStatus, p.status.OnStatus(span))
}

func (p *Parser) emitField(span []byte) Errno {
	if len(span) == 0 {
		return OK
	}

	return p.cb(ErrCBHeaderField, p.handler.OnHeaderField(span))
}
