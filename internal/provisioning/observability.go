package provisioning

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Logger is the minimal logging surface used by stages.
type Logger interface {
	Printf(format string, v ...interface{})
}

// DebugLogger adapts an observer's Debugf to the Logger interface.
func DebugLogger(o Observer) Logger {
	return debugLogger{o}
}

type debugLogger struct{ o Observer }

func (l debugLogger) Printf(format string, v ...interface{}) { l.o.Debugf(format, v...) }

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports how many sites a stage has finished
	Progress(stage string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer

	// Debugf logs at debug verbosity
	Debugf(format string, v ...interface{})
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Stage     string            // Stage name (e.g., "database", "staging")
	Site      string            // Site name if applicable
	Message   string            // Human-readable message
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
	Err       error             // Cause for failure and warning events
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventStageStarted indicates a stage has started its column.
	EventStageStarted EventType = "stage.started"
	// EventStageCompleted indicates a stage finished for every site.
	EventStageCompleted EventType = "stage.completed"
	// EventStageFailed indicates a stage tripped the batch gate.
	EventStageFailed EventType = "stage.failed"

	// EventSiteStarted indicates a stage started for a site.
	EventSiteStarted EventType = "site.started"
	// EventSiteCompleted indicates a stage completed for a site.
	EventSiteCompleted EventType = "site.completed"
	// EventSiteFailed indicates a stage failed a site.
	EventSiteFailed EventType = "site.failed"
	// EventSiteWarning indicates an advisory stage failed for a site.
	EventSiteWarning EventType = "site.warning"
	// EventSiteSkipped indicates a site was not processed by a stage.
	EventSiteSkipped EventType = "site.skipped"

	// EventBatchAborted indicates the batch stopped before all stages ran.
	EventBatchAborted EventType = "batch.aborted"
)

// LogrObserver implements Observer on top of a logr.Logger.
type LogrObserver struct {
	log           logr.Logger
	contextFields map[string]string
}

// NewLogrObserver creates an observer writing to log.
func NewLogrObserver(log logr.Logger) *LogrObserver {
	return &LogrObserver{
		log:           log,
		contextFields: make(map[string]string),
	}
}

// NewDiscardObserver returns an observer that drops everything.
func NewDiscardObserver() *LogrObserver {
	return NewLogrObserver(logr.Discard())
}

// NewConsoleLogger returns a funcr-backed logger writing one line per
// record to w. verbosity 1 enables Debugf output.
func NewConsoleLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{
		LogTimestamp:    true,
		TimestampFormat: "15:04:05",
		Verbosity:       verbosity,
	})
}

// Printf implements Logger.
func (o *LogrObserver) Printf(format string, v ...interface{}) {
	o.log.Info(fmt.Sprintf(format, v...), o.keysAndValues(nil)...)
}

// Debugf implements Observer.
func (o *LogrObserver) Debugf(format string, v ...interface{}) {
	o.log.V(1).Info(fmt.Sprintf(format, v...), o.keysAndValues(nil)...)
}

// Event implements Observer.
func (o *LogrObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	fields := make(map[string]string, len(event.Fields)+2)
	for k, v := range event.Fields {
		fields[k] = v
	}
	fields["event"] = string(event.Type)
	if event.Stage != "" {
		fields["stage"] = event.Stage
	}
	if event.Site != "" {
		fields["site"] = event.Site
	}
	kv := o.keysAndValues(fields)

	switch event.Type {
	case EventSiteFailed, EventStageFailed, EventBatchAborted:
		o.log.Error(event.Err, event.Message, kv...)
	case EventSiteWarning:
		if event.Err != nil {
			kv = append(kv, "warning", event.Err.Error())
		}
		o.log.Info(event.Message, kv...)
	case EventSiteStarted, EventSiteCompleted:
		o.log.V(1).Info(event.Message, kv...)
	default:
		o.log.Info(event.Message, kv...)
	}
}

// Progress implements Observer.
func (o *LogrObserver) Progress(stage string, current, total int) {
	kv := o.keysAndValues(map[string]string{"stage": stage})
	kv = append(kv, "current", current, "total", total)
	if total > 0 {
		kv = append(kv, "percent", (current*100)/total)
	}
	o.log.V(1).Info("progress", kv...)
}

// WithFields implements Observer.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}
	return &LogrObserver{log: o.log, contextFields: newFields}
}

// keysAndValues merges context fields under extra and flattens them in
// key order so output is stable.
func (o *LogrObserver) keysAndValues(extra map[string]string) []interface{} {
	merged := make(map[string]string, len(o.contextFields)+len(extra))
	for k, v := range o.contextFields {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, merged[k])
	}
	return kv
}

// Helper functions for common events

// LogStageStart logs a stage start event.
func LogStageStart(observer Observer, stage string, sites int) {
	observer.Event(Event{
		Type:    EventStageStarted,
		Stage:   stage,
		Message: fmt.Sprintf("starting for %d site(s)", sites),
	})
}

// LogStageComplete logs a stage completion event.
func LogStageComplete(observer Observer, summary StageSummary, duration time.Duration) {
	observer.Event(Event{
		Type:    EventStageCompleted,
		Stage:   summary.Stage,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
		Fields: map[string]string{
			"successful": fmt.Sprint(summary.Successful),
			"failed":     fmt.Sprint(summary.Failed),
			"skipped":    fmt.Sprint(summary.Skipped),
			"warnings":   fmt.Sprint(summary.Warnings),
		},
	})
}

// LogStageFailed logs a stage that tripped the batch gate.
func LogStageFailed(observer Observer, stage string, err error) {
	observer.Event(Event{
		Type:    EventStageFailed,
		Stage:   stage,
		Message: "stage failed",
		Err:     err,
	})
}

// LogSiteFailed logs a site failure.
func LogSiteFailed(observer Observer, stage, site string, err error) {
	observer.Event(Event{
		Type:    EventSiteFailed,
		Stage:   stage,
		Site:    site,
		Message: "site failed",
		Err:     err,
		Fields:  map[string]string{"kind": Kind(err)},
	})
}

// LogSiteWarning logs an advisory failure.
func LogSiteWarning(observer Observer, stage, site string, err error) {
	observer.Event(Event{
		Type:    EventSiteWarning,
		Stage:   stage,
		Site:    site,
		Message: "completed with warning",
		Err:     err,
	})
}

// LogSiteSkipped logs a site that a stage did not process.
func LogSiteSkipped(observer Observer, stage, site, reason string) {
	observer.Event(Event{
		Type:    EventSiteSkipped,
		Stage:   stage,
		Site:    site,
		Message: "skipped: " + reason,
	})
}

// LogBatchAborted logs the batch stopping early.
func LogBatchAborted(observer Observer, stage string, err error) {
	observer.Event(Event{
		Type:    EventBatchAborted,
		Stage:   stage,
		Message: "batch aborted",
		Err:     err,
	})
}
