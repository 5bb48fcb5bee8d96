// Package recorder defines the sinks that observe problem runs.
//
// A recorder is owned by its caller: it is passed explicitly to
// model.Problem.Run, receives the run's start, every solver iteration and the
// final case, and is closed by whoever created it.
package recorder
