package driver

import "time"

// Stage is a phase of a run.
type Stage string

const (
	StageDeclare    Stage = "declare"
	StageCheck      Stage = "check"
	StageSpecialize Stage = "specialize"
	StageFinalize   Stage = "finalize"
)

// Stages lists the stages in the order a run goes through them.
var Stages = []Stage{StageDeclare, StageCheck, StageSpecialize, StageFinalize}

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a module, or for the whole run when Module is
// empty.
type Event struct {
	Module  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Module events of the check stage
// arrive from several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
