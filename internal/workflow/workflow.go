package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Operation string

var (
	OperationInsert Operation = "INSERT"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

type Stage string

var (
	StageBeforeInsert Stage = "BEFORE_INSERT"
	StageBeforeUpdate Stage = "BEFORE_UPDATE"
	StageBeforeDelete Stage = "BEFORE_DELETE"
	StagePostInsert   Stage = "POST_INSERT"
	StagePostUpdate   Stage = "POST_UPDATE"
)

// Flags carries signals between tasks within a single pipeline run.
// Tasks write here instead of into an untyped context bag; the save
// orchestration reads the flags after the pre-operation stages.
type Flags struct {
	MatchPredicateHashIsUnique bool
}

func defaultFlags() Flags {
	return Flags{MatchPredicateHashIsUnique: true}
}

// Context is the per-operation state handed to every task. Original is
// nil on insert and holds the pre-edit entity on update.
type Context[T any] struct {
	Operation Operation
	Target    *T
	Original  *T
	Flags     Flags
}

func NewInsertContext[T any](target *T) *Context[T] {
	return &Context[T]{
		Operation: OperationInsert,
		Target:    target,
		Flags:     defaultFlags(),
	}
}

func NewUpdateContext[T any](target, original *T) *Context[T] {
	return &Context[T]{
		Operation: OperationUpdate,
		Target:    target,
		Original:  original,
		Flags:     defaultFlags(),
	}
}

// Task is a single business-rule step in an entity save pipeline.
type Task[T any] interface {
	Name() string
	Stages() []Stage
	ShouldRun(ctx context.Context, run *Context[T]) (bool, error)
	Run(ctx context.Context, run *Context[T]) error
}

// Runner executes registered tasks for a given stage in registration order.
type Runner[T any] struct {
	log   *zap.Logger
	tasks []Task[T]
}

func NewRunner[T any](log *zap.Logger, tasks ...Task[T]) *Runner[T] {
	return &Runner[T]{
		log:   log.Named("workflow.runner"),
		tasks: tasks,
	}
}

func (r *Runner[T]) Run(ctx context.Context, stage Stage, run *Context[T]) error {
	for _, task := range r.tasks {
		if !runsOn(task, stage) {
			continue
		}

		ok, err := task.ShouldRun(ctx, run)
		if err != nil {
			return fmt.Errorf("task %s should-run: %w", task.Name(), err)
		}
		if !ok {
			r.log.Debug("task skipped",
				zap.String("task", task.Name()),
				zap.String("stage", string(stage)),
			)
			continue
		}

		if err := task.Run(ctx, run); err != nil {
			return fmt.Errorf("task %s: %w", task.Name(), err)
		}

		r.log.Debug("task completed",
			zap.String("task", task.Name()),
			zap.String("stage", string(stage)),
			zap.String("operation", string(run.Operation)),
		)
	}
	return nil
}

func runsOn[T any](task Task[T], stage Stage) bool {
	for _, s := range task.Stages() {
		if s == stage {
			return true
		}
	}
	return false
}
