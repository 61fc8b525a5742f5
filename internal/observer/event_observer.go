package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event is something that happened during an analysis session
type Event struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Provider       string                 `json:"provider,omitempty"`
	InputType      string                 `json:"input_type,omitempty"`
	FileCount      int                    `json:"file_count,omitempty"`
	IssueCount     int                    `json:"issue_count,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of session event
type EventType string

const (
	// AnalysisStarted when an upload is sent for analysis
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when a result arrives
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when validation, transport or the backend fails
	AnalysisFailed EventType = "analysis_failed"
	// AlternativesGenerated when replacement strings are stored on an issue
	AlternativesGenerated EventType = "alternatives_generated"
	// AlternativesFailed when generating replacement strings fails
	AlternativesFailed EventType = "alternatives_failed"
	// SeekAbandoned when a seek gets no completion signal in time
	SeekAbandoned EventType = "seek_abandoned"
	// ReportExported when a report is written to a sink
	ReportExported EventType = "report_exported"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event Event)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event Event)
}

// LoggingObserver logs session events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles session events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event Event) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"provider":        event.Provider,
		"input_type":      event.InputType,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.FileCount > 0 {
		fields["file_count"] = event.FileCount
	}
	if event.IssueCount > 0 {
		fields["issue_count"] = event.IssueCount
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case AnalysisStarted:
		entry.Info("Localization analysis started")
	case AnalysisCompleted:
		entry.Info("Localization analysis completed")
	case AnalysisFailed:
		entry.Error("Localization analysis failed")
	case AlternativesGenerated:
		entry.Debug("Alternative texts generated")
	case AlternativesFailed:
		entry.Warn("Alternative text generation failed")
	case SeekAbandoned:
		entry.Debug("Video seek abandoned")
	case ReportExported:
		entry.Info("Report exported")
	default:
		entry.Info("Session event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	inflight  sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Notify observers concurrently
	for _, observer := range observers {
		p.inflight.Add(1)
		go func(obs Observer) {
			defer p.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					// Log panic but don't crash the application
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until every notification sent so far has been handled
func (p *EventPublisher) Wait() {
	p.inflight.Wait()
}
