// Package lillydap implements a bidirectional LDAP message dispatch
// framework: a twelve-layer pipeline (six ingress, six egress) sitting
// between a non-blocking byte Source/Sink and application-supplied
// per-opcode callbacks, with per-connection arena allocation and an
// enqueue-and-resume send queue.
//
// A Structural value wires the pipeline's defaults, an OpRegistry, reject
// masks, and a control-filter policy once; many Connections may share one
// Structural. NewConnection attaches a Source/Sink pair; the caller drives
// IngressEvent and EgressEvent from whatever readiness loop it already
// runs (epoll, kqueue, a goroutine-per-connection blocking read with a
// short deadline, or a test double).
//
//	def := lillydap.NewStructural(
//		lillydap.WithRegistry(registry),
//		lillydap.WithLogger(log),
//	)
//	conn := lillydap.NewConnection(def, src, sink, 0)
//	for {
//		if _, err := conn.IngressEvent(); err != nil { ... }
//		if _, err := conn.EgressEvent(); err != nil { ... }
//	}
package lillydap
