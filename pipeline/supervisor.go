package pipeline

import (
	// Go Internal Packages
	"context"
	"sync/atomic"
	"time"

	// Local Packages
	errors "fraud-stream/errors"
	models "fraud-stream/models"

	// External Packages
	"go.uber.org/zap"
)

type State int32

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Starting:
		return "STARTING"
	case Running:
		return "RUNNING"
	case Stopping:
		return "STOPPING"
	}
	return "STOPPED"
}

// Resource is a connection owned by the supervisor.
type Resource interface {
	Name() string
	Open(ctx context.Context) error
	Close(ctx context.Context) error
}

// Source delivers records to handle until ctx is cancelled. It returns once every
// record it started handling has completed.
type Source interface {
	Resource
	Consume(ctx context.Context, handle func(models.Record) error) error
}

type Processor interface {
	ProcessRecord(ctx context.Context, record models.Record) error
}

// Supervisor owns the pipeline lifecycle: it opens the source and the stores,
// runs the source into the processor and tears everything down on shutdown.
type Supervisor struct {
	source    Source
	stores    []Resource
	processor Processor
	grace     time.Duration
	logger    *zap.Logger
	state     atomic.Int32
}

// NewSupervisor creates a supervisor. stores are opened in order after the source
// and closed before it.
func NewSupervisor(source Source, processor Processor, grace time.Duration, logger *zap.Logger, stores ...Resource) *Supervisor {
	return &Supervisor{source: source, stores: stores, processor: processor, grace: grace, logger: logger}
}

func (s *Supervisor) State() State {
	return State(s.state.Load())
}

func (s *Supervisor) setState(st State) {
	prev := State(s.state.Swap(int32(st)))
	s.logger.Info("pipeline state changed", zap.Stringer("from", prev), zap.Stringer("to", st))
}

// Run starts the pipeline and blocks until ctx is cancelled or the source fails.
// A startup failure returns a fatal *errors.ConnectionError. A graceful shutdown
// returns nil.
func (s *Supervisor) Run(ctx context.Context) error {
	s.setState(Starting)
	opened, err := s.open(ctx)
	if err != nil {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.grace)
		defer cancel()
		s.closeAll(closeCtx, opened)
		s.setState(Stopped)
		return err
	}
	s.setState(Running)

	// Writes run on their own context so a shutdown signal does not cut them off.
	writeCtx, abort := context.WithCancel(context.WithoutCancel(ctx))
	defer abort()

	consumed := make(chan error, 1)
	go func() {
		consumed <- s.source.Consume(ctx, func(r models.Record) error {
			return s.processor.ProcessRecord(writeCtx, r)
		})
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.setState(Stopping)
		s.logger.Info("shutdown signal received, draining in-flight records", zap.Duration("grace_period", s.grace))
	case runErr = <-consumed:
		consumed = nil
		s.setState(Stopping)
		if runErr != nil {
			s.logger.Error("event source stopped", zap.Error(runErr))
		}
	}

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.grace)
	defer cancel()

	if consumed != nil {
		select {
		case runErr = <-consumed:
		case <-stopCtx.Done():
			s.logger.Warn("grace period elapsed, aborting in-flight writes")
			abort()
		}
	}

	s.closeAll(stopCtx, opened)
	s.setState(Stopped)

	if runErr != nil {
		return &errors.ConnectionError{Resource: s.source.Name(), Fatal: true, Err: runErr}
	}
	return nil
}

// open opens the source then every store, returning those opened so far.
func (s *Supervisor) open(ctx context.Context) ([]Resource, error) {
	resources := append([]Resource{s.source}, s.stores...)
	opened := make([]Resource, 0, len(resources))

	for _, r := range resources {
		if err := r.Open(ctx); err != nil {
			s.logger.Error("failed to connect", zap.String("resource", r.Name()), zap.Error(err))
			return opened, &errors.ConnectionError{Resource: r.Name(), Fatal: true, Err: err}
		}
		s.logger.Info("connected", zap.String("resource", r.Name()))
		opened = append(opened, r)
	}
	return opened, nil
}

// closeAll releases resources in reverse order: stores are flushed before the source goes.
// Every Close shares ctx, so on shutdown the whole release is bounded by the grace period.
func (s *Supervisor) closeAll(ctx context.Context, opened []Resource) {
	for i := len(opened) - 1; i >= 0; i-- {
		r := opened[i]
		if err := r.Close(ctx); err != nil {
			s.logger.Error("failed to close", zap.String("resource", r.Name()), zap.Error(err))
			continue
		}
		s.logger.Info("closed", zap.String("resource", r.Name()))
	}
}
