// Package jsbridge embeds QuickJS in Go and marshals values across the
// boundary in both directions.
//
// A Session owns one engine runtime and context. Host values (host.Value)
// are mirrored into the engine with SetGlobal, AddObjectProperty or as call
// arguments, and engine values are mirrored back from Eval, GetGlobal and
// Call. Host callables are looked up by name through a host.Resolver, both
// when they are registered and again on every call from engine code:
//
//	host.Default.DefineFunc("upper", strings.ToUpper)
//
//	s, err := jsbridge.New(jsbridge.WithMemoryLimit(64 << 20))
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	if err := s.RegisterFunction("upper", "upper"); err != nil {
//		return err
//	}
//	v, err := s.Eval(`upper("hi")`) // host.String("HI")
//
// Object builds engine objects on the host side ahead of time; its members
// are captured copies, so one Object can be registered in many sessions.
// Pool keeps a set of pre-warmed sessions for callers that want a dedicated
// engine per evaluation.
package jsbridge
