package jsbridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/cryguy/jsbridge/host"
	"github.com/cryguy/jsbridge/internal/mirror"
	"github.com/cryguy/jsbridge/internal/wire"
	"go.uber.org/zap"
)

// replyEncodeFailed is sent when a result cannot be marshaled. It is a
// valid wire error node.
const replyEncodeFailed = `{"t":"err","s":"encoding host result failed"}`

// errOutsideOperation rejects a dispatch that did not come from engine code
// running under one of the session's own operations.
var errOutsideOperation = errors.New("host callable invoked outside a session operation")

// dispatch is registered as the engine's single native entry point. Engine
// code reaches it through functions built by the prelude's bridge(name);
// payload is the wire list of the call's arguments. The reply is a wire
// node, or an err node that the prelude rethrows as an engine Error.
func (s *Session) dispatch(name, payload string) string {
	start := time.Now()
	result, err := s.invoke(name, payload)
	s.metrics.callback(err)

	var reply *wire.Node
	if err != nil {
		s.log.Debug("host callable failed",
			zap.String("callable", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		reply = wire.Error(err.Error())
	} else {
		s.log.Debug("host callable dispatched",
			zap.String("callable", name),
			zap.Duration("elapsed", time.Since(start)))
		reply = mirror.ToNode(result)
	}

	doc, merr := wire.Marshal(reply)
	if merr != nil {
		return replyEncodeFailed
	}
	return doc
}

// invoke resolves name afresh and calls it. A panic in the callable is
// reported as an error.
func (s *Session) invoke(name, payload string) (v host.Value, err error) {
	if !s.guard.Held() {
		return host.Null(), errOutsideOperation
	}
	fn, err := s.resolver.Resolve(name)
	if err != nil {
		return host.Null(), err
	}
	args, err := mirror.DecodeArgs(payload)
	if err != nil {
		return host.Null(), fmt.Errorf("decoding arguments: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			v, err = host.Null(), fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(args)
}
