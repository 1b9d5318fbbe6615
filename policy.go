package lillydap

// ControlFilter inspects or rewrites the controls attached to a message
// before (recv) or after (send) the operation layer sees it. Returning a
// non-nil error rejects the whole message with an ErrKindPolicy error.
type ControlFilter func(conn *Connection, msgid MessageID, op Opcode, ctrls Controls) (Controls, error)

// ControlPolicy holds the four control-filter hook slots the design calls
// for: one pair (recv/send) that runs for every opcode, and one pair that
// can be narrowed to a single opcode via PerOpcodeRecv/PerOpcodeSend.
type ControlPolicy struct {
	AllRecv ControlFilter
	AllSend ControlFilter

	PerOpcodeRecv map[Opcode]ControlFilter
	PerOpcodeSend map[Opcode]ControlFilter
}

func (p *ControlPolicy) runRecv(conn *Connection, msgid MessageID, op Opcode, ctrls Controls) (Controls, error) {
	var err error
	if p.AllRecv != nil {
		if ctrls, err = p.AllRecv(conn, msgid, op, ctrls); err != nil {
			return nil, err
		}
	}
	if f, ok := p.PerOpcodeRecv[op]; ok {
		if ctrls, err = f(conn, msgid, op, ctrls); err != nil {
			return nil, err
		}
	}
	return ctrls, nil
}

func (p *ControlPolicy) runSend(conn *Connection, msgid MessageID, op Opcode, ctrls Controls) (Controls, error) {
	var err error
	if p.AllSend != nil {
		if ctrls, err = p.AllSend(conn, msgid, op, ctrls); err != nil {
			return nil, err
		}
	}
	if f, ok := p.PerOpcodeSend[op]; ok {
		if ctrls, err = f(conn, msgid, op, ctrls); err != nil {
			return nil, err
		}
	}
	return ctrls, nil
}
