// Package core provides crash-safe goroutine spawning shared by the engine
// and the built-in component kinds.
package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// CrashHandler receives the recovered panic value from a goroutine spawned
// via Go. Handlers typically restore external state (terminal, audio device)
// before reporting; the default prints the stack and exits.
type CrashHandler func(r any)

var crashHandler atomic.Pointer[CrashHandler]

func init() {
	h := CrashHandler(defaultCrashHandler)
	crashHandler.Store(&h)
}

// SetCrashHandler replaces the process-wide crash handler. Hosts that own a
// terminal or audio device install a handler that resets it before the stack
// trace prints. Passing nil restores the default.
func SetCrashHandler(h CrashHandler) {
	if h == nil {
		h = defaultCrashHandler
	}
	crashHandler.Store(&h)
}

func defaultCrashHandler(r any) {
	fmt.Fprintf(os.Stderr, "\nCRASH DETECTED: %v\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
	os.Exit(1)
}

// HandleCrash invokes the installed crash handler for a recovered panic.
// A nil value is a no-op so it can sit directly in a recover expression.
func HandleCrash(r any) {
	if r == nil {
		return
	}
	(*crashHandler.Load())(r)
}

// Go runs fn in a new goroutine with panic recovery routed through the
// installed crash handler. Use this instead of the go keyword for engine
// goroutines so external state is restored on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
