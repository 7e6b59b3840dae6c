package parser

type parserState uint8

const (
	eDead parserState = iota + 1
	eUpgraded
	eClosed

	// pseudo-states. They're never observed by a byte, Execute settles them first,
	// so a pause inside OnHeadersComplete or OnMessageComplete can be resumed.
	eHeadersDone
	eMessageDone

	// everything between eStartReqOrRes and eHeadersAlmostDone is the message head
	eStartReqOrRes
	eReqOrResH
	eStartReq
	eReqMethod
	eReqURLStart
	eReqURL
	eReqVersion
	eReqMajor
	eReqDot
	eReqMinor
	eReqLineEnd
	eReqLineAlmostDone
	eStartRes
	eResVersion
	eResMajor
	eResDot
	eResMinor
	eResCodeStart
	eResCode
	eResCodeEnd
	eResStatus
	eResLineAlmostDone
	eHeaderFieldStart
	eHeaderField
	eHeaderValueDiscardWS
	eHeaderValueDiscardWSAlmostDone
	eHeaderValueDiscardLWS
	eHeaderValue
	eHeaderAlmostDone
	eHeaderValueLWS
	eHeaderValueFold
	eHeadersAlmostDone

	eBodyIdentity
	eBodyIdentityEOF
	eChunkSizeStart
	eChunkSize
	eChunkSizeWS
	eChunkExt
	eChunkSizeAlmostDone
	eChunkData
	eChunkDataAlmostDone
	eChunkDataDone
)

func (s parserState) head() bool {
	return s >= eStartReqOrRes && s <= eHeadersAlmostDone
}

type flags uint16

const (
	fChunked flags = 1 << iota
	fContentLength
	fTransferEncoding
	// fUnknownCoding is set when a transfer coding other than chunked or identity was
	// seen. Together with fChunked unset it means that chunked isn't the final one.
	fUnknownCoding
	fConnKeepAlive
	fConnClose
	fConnUpgrade
	fUpgrade
	fTrailing
	fSkipBody
	fForceUpgrade
)

// headerState tells which recognized header the current field value belongs to.
type headerState uint8

const (
	hGeneral headerState = iota
	hContentLength
	hTransferEncoding
	hConnection
)

type lengthState uint8

const (
	clNone lengthState = iota
	clDigits
	clDone
)

type tokenState uint8

const (
	tokNone tokenState = iota
	tokIn
	tokDone
	tokParams
	tokBad
)
