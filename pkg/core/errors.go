package core

import "errors"

var (
	// ErrQueueEmpty is returned by Next when no units remain. Calling
	// Next without checking HasNext is a programming error.
	ErrQueueEmpty = errors.New("core: scheduler queue is empty")

	// ErrNoResults is returned by Aggregate when given no results.
	ErrNoResults = errors.New("core: no results to aggregate")

	// ErrOutOfContext is returned by Defer when no scenario is running.
	ErrOutOfContext = errors.New("core: defer called outside of a running scenario")

	// ErrReportSealed is returned by AddResult after the report is sealed.
	ErrReportSealed = errors.New("core: report is sealed")

	// ErrLifecycleStarted is returned by Start on any call after the first.
	ErrLifecycleStarted = errors.New("core: lifecycle already started")
)
