package lillydap

import (
	ber "github.com/go-asn1-ber/asn1-ber"
)

// MessageID identifies an LDAPMessage within a connection.
// MessageID ::= INTEGER (0 .. maxInt)
type MessageID int64

const (
	minMessageID MessageID = 0
	maxMessageID MessageID = 2147483647

	tagControls = 0 // [0] Controls OPTIONAL, on LDAPMessage
)

// Control is a single LDAP control as defined in RFC 4511 section 4.1.11.
type Control struct {
	OID         string
	Criticality bool
	Value       []byte
}

// Controls is the set of controls attached to one LDAPMessage.
type Controls []Control

// Message is the decoded LDAPMessage envelope: a message ID, the raw
// (still opcode-tagged, still DER-encoded) operation body, and any
// controls. Layer 2 of the ingress pipeline is exactly this envelope split.
// No pipeline layer decodes Operation into a typed view: the registered
// handler receives the raw Cursor and calls the matching Decode function.
type Message struct {
	ID        MessageID
	Op        Opcode
	Operation *Cursor
	Controls  Controls

	// RequestOp and Correlated are filled in by GetOpResp when this
	// message is a response opcode matched against an earlier outgoing
	// request recorded in the connection's in-flight index.
	RequestOp  Opcode
	Correlated bool
}

// DecodeMessage decodes one LDAPMessage frame (tag and length included)
// into its envelope. The operation body is left as a Cursor for the next
// ingress layer to decode into a typed view — this function only peels the
// SEQUENCE { messageID, protocolOp, controls } shell.
func DecodeMessage(pool *Pool, frame []byte) (*Message, error) {
	root, err := ParseCursor(pool, frame)
	if err != nil {
		return nil, err
	}
	if root.ClassType() != ber.ClassUniversal || !root.Constructed() {
		return nil, framingErr("DecodeMessage", errNotSequence)
	}

	children := root.Children()
	idCur, ok := children.Next()
	if !ok {
		return nil, decodeErr("DecodeMessage", errMissingField)
	}
	id := MessageID(idCur.Int64())
	if id < minMessageID || id > maxMessageID {
		return nil, decodeErr("DecodeMessage", errBadMessageID)
	}

	opCur, ok := children.Next()
	if !ok {
		return nil, decodeErr("DecodeMessage", errMissingOperation)
	}
	if opCur.ClassType() != ber.ClassApplication {
		return nil, decodeErr("DecodeMessage", errNotApplicationTag)
	}

	msg := &Message{
		ID:        id,
		Op:        Opcode(opCur.Tag()),
		Operation: opCur,
	}

	if ctlCur, ok := children.Next(); ok {
		if ctlCur.ClassType() == ber.ClassContext && ctlCur.Tag() == tagControls {
			ctrls, err := decodeControls(ctlCur)
			if err != nil {
				return nil, decodeErr("DecodeMessage.controls", err)
			}
			msg.Controls = ctrls
		}
	}

	return msg, nil
}

func decodeControls(cur *Cursor) (Controls, error) {
	var out Controls
	children := cur.Children()
	for {
		ctl, ok := children.Next()
		if !ok {
			break
		}
		inner := ctl.Children()
		oidCur, ok := inner.Next()
		if !ok {
			return nil, errMissingField
		}
		c := Control{OID: oidCur.String()}
		if next, ok := inner.Next(); ok {
			if next.ClassType() == ber.ClassUniversal && next.Tag() == ber.TagBoolean {
				c.Criticality = next.Bool()
				if v, ok := inner.Next(); ok {
					c.Value = v.Bytes()
				}
			} else {
				c.Value = next.Bytes()
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// Encode serializes an envelope plus an already-encoded operation body
// (tag included) into a full LDAPMessage frame, ready to hand to the send
// queue.
func (m *Message) Encode(pool *Pool, opBody *ber.Packet) ([]byte, error) {
	envelope := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "LDAPMessage")
	envelope.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(m.ID), "messageID"))
	envelope.AppendChild(opBody)

	if len(m.Controls) > 0 {
		ctlSeq := ber.Encode(ber.ClassContext, ber.TypeConstructed, tagControls, nil, "Controls")
		for _, c := range m.Controls {
			ctl := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Control")
			ctl.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, c.OID, "controlType"))
			if c.Criticality {
				ctl.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, true, "criticality"))
			}
			if len(c.Value) > 0 {
				ctl.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, string(c.Value), "controlValue"))
			}
			ctlSeq.AppendChild(ctl)
		}
		envelope.AppendChild(ctlSeq)
	}

	return envelope.Bytes(), nil
}

var (
	errNotSequence       = &simpleErr{"LDAPMessage: outer element is not a SEQUENCE"}
	errMissingField      = &simpleErr{"LDAPMessage: missing required field"}
	errBadMessageID      = &simpleErr{"LDAPMessage: messageID out of range"}
	errMissingOperation  = &simpleErr{"LDAPMessage: missing protocolOp"}
	errNotApplicationTag = &simpleErr{"LDAPMessage: protocolOp is not APPLICATION tagged"}
)
