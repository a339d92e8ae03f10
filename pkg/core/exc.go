package core

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Frame is one entry of a captured call chain, serializable for
// reporting and persistence.
type Frame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

func (f Frame) String() string {
	return fmt.Sprintf("%s\n    %s:%d", f.Function, f.File, f.Line)
}

// ExcInfo is a language-neutral capture of a failure: the kind of
// condition, its message, and the call chain at the catch point.
// Reporters render it; nothing in the kernel interprets it.
type ExcInfo struct {
	Kind    string  `json:"kind"`
	Message string  `json:"message"`
	Frames  []Frame `json:"frames,omitempty"`
}

func (e *ExcInfo) String() string {
	return e.Kind + ": " + e.Message
}

// CaptureExcInfo builds exception info from an error, with the call
// chain captured at the caller.
func CaptureExcInfo(err error) *ExcInfo {
	return &ExcInfo{
		Kind:    errorKind(err),
		Message: err.Error(),
		Frames:  captureFrames(2),
	}
}

func capturePanicInfo(v any) *ExcInfo {
	msg := fmt.Sprintf("%v", v)
	if err, ok := v.(error); ok {
		msg = err.Error()
	}
	return &ExcInfo{
		Kind:    "panic",
		Message: msg,
		Frames:  captureFrames(3),
	}
}

// errorKind names the root error's concrete type. Anonymous errors made
// with errors.New or fmt.Errorf collapse to "error".
func errorKind(err error) string {
	root := err
	for {
		inner := unwrapOne(root)
		if inner == nil {
			break
		}
		root = inner
	}
	t := reflect.TypeOf(root)
	if t == nil {
		return "error"
	}
	name := strings.TrimPrefix(t.String(), "*")
	switch name {
	case "errors.errorString", "errors.joinError", "fmt.wrapError", "fmt.wrapErrors":
		return "error"
	}
	return name
}

func unwrapOne(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

func captureFrames(skip int) []Frame {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])
	out := make([]Frame, 0, n)
	for {
		fr, more := frames.Next()
		out = append(out, Frame{Function: fr.Function, File: fr.File, Line: fr.Line})
		if !more {
			break
		}
	}
	return out
}
