package hostio

import (
	"fmt"
	"runtime/debug"

	"github.com/Iron-Ham/hostlog/internal/errors"
	"github.com/Iron-Ham/hostlog/internal/stream"
)

// FaultHandler is notified of every contained subscriber fault. It runs with
// the interceptor suspended, so it may write to the console.
type FaultHandler func(fault *errors.SubscriberFault)

// dispatch delivers lines of one category to every live subscriber, segment
// by segment. Callers hold ic.mu.
func (ic *Interceptor) dispatch(class stream.Class, lines []string) {
	if len(lines) == 0 {
		return
	}
	name := class.String()
	for s := range ic.subs.Live() {
		handle := lineHandler(s, class)
		for _, line := range lines {
			ic.call(s, name, func() error { return handle(line) })
		}
	}
}

// offer delivers an interactive event to subscribers that observe them.
// Callers hold ic.mu.
func (ic *Interceptor) offer(event string, fn func(InteractiveSubscriber) error) {
	for s := range ic.subs.Live() {
		is, ok := s.(InteractiveSubscriber)
		if !ok {
			continue
		}
		ic.call(s, event, func() error { return fn(is) })
	}
}

// call runs one handler, converting a returned error or a panic into a
// SubscriberFault that is reported and then dropped.
func (ic *Interceptor) call(s Subscriber, event string, fn func() error) {
	var fault *errors.SubscriberFault
	func() {
		defer func() {
			if r := recover(); r != nil {
				fault = errors.NewSubscriberPanic(typeName(s), event, r, debug.Stack())
			}
		}()
		if err := fn(); err != nil {
			fault = errors.NewSubscriberFault(typeName(s), event, err)
		}
	}()
	if fault != nil {
		ic.reportFault(fault)
	}
}

func (ic *Interceptor) reportFault(fault *errors.SubscriberFault) {
	log := ic.log().WithSubscriber(fault.Subscriber).WithStream(fault.Stream)
	if fault.Panicked() {
		log.Warn("subscriber panicked", "panic", fmt.Sprint(fault.Recovered), "stack", string(fault.Stack))
	} else {
		log.Warn("subscriber failed", "error", fault.Unwrap().Error())
	}

	if ic.onFault == nil {
		return
	}
	defer ic.Suspend()()
	defer func() {
		if r := recover(); r != nil {
			log.Error("fault handler panicked", "panic", fmt.Sprint(r))
		}
	}()
	ic.onFault(fault)
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
