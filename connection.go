package lillydap

import (
	ber "github.com/go-asn1-ber/asn1-ber"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Source is the non-blocking byte source the frame reader pulls from. A
// single call must never block; wouldBlock=true with n==0 signals "no
// data ready yet," distinct from err!=nil which signals a real failure.
type Source interface {
	ReadAvailable(p []byte) (n int, wouldBlock bool, err error)
}

// lookaheadSize is the tag-plus-length lookahead spec.md section 4.2
// requires: 1 tag byte + up to 1+4 length bytes covers any definite-length
// encoding up to 2^32-1.
const lookaheadSize = 6

// frameState is the ingress state machine's current stage, named after
// spec.md section 4.8's IdleForTag -> ReadingLength -> ReadingBody ->
// Dispatching -> IdleForTag cycle (Dispatching is folded into the
// transition back to IdleForTag: it happens synchronously once ReadingBody
// completes, never spanning an IngressEvent call).
type frameState int

const (
	stateIdleForTag frameState = iota
	stateReadingLength
	stateReadingBody
	stateClosed
)

// maxFrameLength bounds a single LDAPMessage frame; a declared length past
// this is a resource-exhaustion error rather than an attempt to allocate
// an attacker-chosen amount of memory.
const maxFrameLength = 16 * 1024 * 1024

// pendingEntry is what the in-flight request index remembers for a
// message ID sent out by this connection: the request opcode, so the
// eventual response can be correlated and Message.RequestOp/Correlated
// filled in by GetOpResp.
type pendingEntry struct {
	op Opcode
}

// Connection is one socket's worth of mutable dispatch state: the frame
// reader, the send queue, the in-flight request index, and two pools
// (cnxPool, long-lived, for connection-scoped allocations; msgPool for the
// ingress message currently being assembled or dispatched, nil between
// frames). Connections are single-owner — see SPEC_FULL.md section 7
// — and carry no internal mutex for hot-path state.
type Connection struct {
	def *Structural

	src  Source
	sink Sink

	cnxPool *Pool
	msgPool *Pool

	logger Logger

	// Frame reader state.
	state        frameState
	lookahead    [lookaheadSize]byte
	lookaheadLen int
	frameLen     int
	frameBuf     []byte
	frameGot     int

	queue sendQueue

	pending *lru.Cache[MessageID, pendingEntry]

	// RFC 1823-flavored diagnostic fields. The dispatch pipeline does not
	// write them: errors surface only through callback return values and
	// IngressEvent/EgressEvent's own return, and these fields hold whatever
	// the application stores in them.
	Deref     DerefAliases
	TimeLimit int
	SizeLimit int
	LDErrno   int
	LDMatched string
	LDError   string
}

// NewConnection attaches a Source/Sink pair to a Structural and returns a
// ready-to-drive Connection. pendingCapacity bounds the in-flight request
// index; a long-running connection with many outstanding pipelined
// requests needs headroom here, but an unbounded index would let a
// misbehaving peer grow memory without limit.
func NewConnection(def *Structural, src Source, sink Sink, pendingCapacity int) *Connection {
	if pendingCapacity <= 0 {
		pendingCapacity = 256
	}
	cache, _ := lru.New[MessageID, pendingEntry](pendingCapacity)
	return &Connection{
		def:     def,
		src:     src,
		sink:    sink,
		cnxPool: NewPool(),
		logger:  def.Log,
		pending: cache,
	}
}

func (c *Connection) log() Logger {
	if c.logger == nil {
		return noopLogger{}
	}
	return c.logger
}

// rememberPending records an outgoing request's opcode under its message
// ID so a later response frame can be correlated by GetOpResp.
func (c *Connection) rememberPending(msgid MessageID, op Opcode) {
	if c.pending != nil {
		c.pending.Add(msgid, pendingEntry{op: op})
	}
}

// popPending looks up and removes a message ID's recorded request opcode.
func (c *Connection) popPending(msgid MessageID) (Opcode, bool) {
	if c.pending == nil {
		return 0, false
	}
	e, ok := c.pending.Get(msgid)
	if !ok {
		return 0, false
	}
	c.pending.Remove(msgid)
	return e.op, true
}

// enqueue appends an encoded frame to the send queue and opportunistically
// drives one drain pass, so a sink that happens to be writable right now
// doesn't wait for the caller's next explicit EgressEvent.
func (c *Connection) enqueue(frame []byte) error {
	c.queue.enqueue(&sendElem{data: frame, pool: c.msgPool})
	if c.sink == nil {
		return nil
	}
	_, err := c.queue.drain(c.sink)
	return err
}

// CanSend reports whether the send queue has anything left to write.
func (c *Connection) CanSend() bool { return c.queue.canSend() }

// rejectIncoming synthesizes a response for a request the ingress pipeline
// decided to reject (policy or not-implemented), or simply logs and drops
// the condition for a non-request opcode (there is no peer waiting on a
// response to a response). It is the in-band-synthesis half of SPEC_FULL.md
// section 9's error propagation policy.
func (c *Connection) rejectIncoming(pool *Pool, msg *Message, cause *Error) error {
	respOp, ok := requestToResponseOpcode(msg.Op)
	if !ok {
		c.log().Debug("dropping unrecognized or response opcode", "opcode", msg.Op.String(), "msgid", int64(msg.ID))
		return cause
	}
	code := ResultUnwillingToPerform
	if cause.Kind == ErrKindDecode {
		code = ResultProtocolError
	}
	result := errorResult(code, cause.Error())
	body := genericResultResponse(respOp, result)
	frame, encErr := msg.Encode(pool, body)
	_ = encErr // the envelope encode path here cannot fail on a well-formed LDAPResult
	if encErr == nil {
		if err := c.def.PutDercursor(c, frame); err != nil {
			c.log().Warn("failed to send rejection response", "opcode", msg.Op.String(), "err", err)
		}
	}
	return cause
}

// requestToResponseOpcode maps a basic or extended request opcode to its
// matching response opcode, for synthesizing an error result when the
// pipeline rejects a request before it ever reaches the operation layer.
func requestToResponseOpcode(op Opcode) (Opcode, bool) {
	switch op {
	case OpBindRequest:
		return OpBindResponse, true
	case OpSearchRequest:
		return OpSearchResultDone, true
	case OpModifyRequest:
		return OpModifyResponse, true
	case OpAddRequest:
		return OpAddResponse, true
	case OpDelRequest:
		return OpDelResponse, true
	case OpModifyDNRequest:
		return OpModifyDNResponse, true
	case OpCompareRequest:
		return OpCompareResponse, true
	case OpExtendedRequest:
		return OpExtendedResponse, true
	case OpStartTLSRequest:
		return OpStartTLSResponse, true
	case OpPasswdModifyRequest:
		return OpPasswdModifyResponse, true
	case OpCancelRequest:
		return OpCancelResponse, true
	case OpWhoamiRequest:
		return OpWhoamiResponse, true
	case OpLBURPStartRequest:
		return OpLBURPStartResponse, true
	case OpLBURPEndRequest:
		return OpLBURPEndResponse, true
	case OpLBURPUpdateRequest:
		return OpLBURPUpdateResponse, true
	case OpTurnRequest:
		return OpTurnResponse, true
	case OpTxnStartRequest:
		return OpTxnStartResponse, true
	case OpTxnEndRequest:
		return OpTxnEndResponse, true
	default:
		// UnbindRequest and AbandonRequest have no response by design;
		// everything else here is already a response opcode.
		return 0, false
	}
}

// genericResultResponse builds the *ber.Packet for an operation whose body
// is exactly an LDAPResult. SearchResultEntry/SearchResultReference carry
// other fields and are never synthesized by rejectIncoming. An
// ExtendedResponse, and the response to any synthetic extended opcode, is
// built as a wire ExtendedResponse holding only the LDAPResult: its
// optional responseName and responseValue are left out.
func genericResultResponse(op Opcode, result LDAPResult) *ber.Packet {
	tag := op
	if op >= OpStartTLSRequest {
		// Synthetic opcodes never appear on the wire.
		tag = OpExtendedResponse
	}
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(tag), nil, op.String())
	for _, child := range encodeLDAPResult(result) {
		p.AppendChild(child)
	}
	return p
}

// IngressEvent drives the frame reader: it reads as much as is available
// from src without blocking, advancing IdleForTag -> ReadingLength ->
// ReadingBody, and dispatches each complete frame through
// Structural.GetDercursor before resuming at IdleForTag for the next one.
// It returns the number of bytes consumed this call; a returned *Error
// with Fatal set indicates a fatal condition (the caller should close the
// connection after any pending egress has drained).
func (c *Connection) IngressEvent() (int, error) {
	total := 0
	for {
		switch c.state {
		case stateClosed:
			return total, nil

		case stateIdleForTag, stateReadingLength:
			n, wouldBlock, err := c.src.ReadAvailable(c.lookahead[c.lookaheadLen:lookaheadSize])
			total += n
			c.lookaheadLen += n
			if err != nil {
				c.state = stateClosed
				return total, ioErr("IngressEvent.lookahead", err)
			}
			if n == 0 {
				if wouldBlock || c.lookaheadLen < lookaheadSize {
					return total, nil
				}
			}
			if c.lookaheadLen < 2 {
				// Need at least tag + first length byte to make progress.
				if wouldBlock {
					return total, nil
				}
				continue
			}
			if c.lookahead[0] != 0x30 {
				c.state = stateClosed
				return total, framingErr("IngressEvent.tag", errBadTag)
			}
			lenByte := c.lookahead[1]
			var headerLen, declaredLen int
			if lenByte&0x80 == 0 {
				headerLen = 2
				declaredLen = int(lenByte)
			} else {
				nLenBytes := int(lenByte &^ 0x80)
				if nLenBytes == 0 || nLenBytes > 4 {
					c.state = stateClosed
					return total, framingErr("IngressEvent.length", errIndefiniteLength)
				}
				headerLen = 2 + nLenBytes
				if c.lookaheadLen < headerLen {
					c.state = stateReadingLength
					if wouldBlock {
						return total, nil
					}
					continue
				}
				declaredLen = 0
				for i := 0; i < nLenBytes; i++ {
					declaredLen = (declaredLen << 8) | int(c.lookahead[2+i])
				}
			}
			full := headerLen + declaredLen
			if full > maxFrameLength {
				c.state = stateClosed
				return total, resourceErr("IngressEvent.length", errFrameTooLarge)
			}
			c.msgPool = NewPool()
			c.frameLen = full
			c.frameBuf = c.msgPool.Alloc(full)
			c.frameGot = copy(c.frameBuf, c.lookahead[:c.lookaheadLen])
			c.lookaheadLen = 0
			c.state = stateReadingBody
			if c.frameGot >= c.frameLen {
				if fatal, err := c.dispatchFrame(); fatal {
					return total, err
				}
				continue
			}

		case stateReadingBody:
			n, wouldBlock, err := c.src.ReadAvailable(c.frameBuf[c.frameGot:c.frameLen])
			total += n
			c.frameGot += n
			if err != nil {
				c.state = stateClosed
				return total, ioErr("IngressEvent.body", err)
			}
			if c.frameGot >= c.frameLen {
				if fatal, err := c.dispatchFrame(); fatal {
					return total, err
				}
				continue
			}
			if n == 0 || wouldBlock {
				return total, nil
			}
		}
	}
}

// dispatchFrame hands a fully-assembled frame to the ingress pipeline and
// resets the reader to IdleForTag for the next one. A non-fatal pipeline
// error (decode, policy, not-implemented, callback) has already been
// turned into an in-band response by rejectIncoming or logged by
// GetResponse; only a Fatal *Error stops the reader and closes the
// connection, matching SPEC_FULL.md section 9's propagation policy.
func (c *Connection) dispatchFrame() (fatal bool, err error) {
	frame := c.frameBuf
	pool := c.msgPool
	c.frameBuf = nil
	c.frameLen, c.frameGot = 0, 0
	c.state = stateIdleForTag
	err = c.def.GetDercursor(c, pool, frame)
	pool.End()
	c.msgPool = nil
	if err == nil {
		return false, nil
	}
	if lerr, ok := err.(*Error); ok && lerr.Fatal {
		c.state = stateClosed
		return true, err
	}
	return false, nil
}

// EgressEvent drives the send queue: as many non-blocking writes as sink
// accepts, in FIFO order, releasing each frame's message arena as its last
// byte is written.
func (c *Connection) EgressEvent() (int, error) {
	if c.sink == nil || !c.queue.canSend() {
		return 0, nil
	}
	return c.queue.drain(c.sink)
}

// Close transitions the connection to Closed, dropping every pending
// send-queue element and releasing its arena, per spec.md section 4.8.
func (c *Connection) Close() {
	c.state = stateClosed
	for c.queue.head != nil {
		e := c.queue.head
		c.queue.head = e.next
		if e.pool != nil {
			e.pool.End()
		}
	}
	c.queue.tail = nil
	if c.msgPool != nil {
		c.msgPool.End()
		c.msgPool = nil
	}
	c.cnxPool.End()
}

var (
	errBadTag           = &simpleErr{"frame tag is not 0x30 (SEQUENCE)"}
	errIndefiniteLength = &simpleErr{"indefinite-length encoding is not supported"}
	errFrameTooLarge    = &simpleErr{"frame length exceeds maximum"}
)
