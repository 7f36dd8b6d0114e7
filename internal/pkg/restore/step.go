package restore

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

// maxStepAttempts bounds the retry of one post-processing step.
const maxStepAttempts = 3

// Step is a post-processing step executed after all relations were
// imported, for example recounting caches or rebuilding search data.
type Step interface {
	Name() string
	Run(ctx context.Context, run *model.BuildContext) error
}

// StepFunc adapts a plain function to a Step.
type StepFunc struct {
	StepName string
	Fn       func(ctx context.Context, run *model.BuildContext) error
}

func (s *StepFunc) Name() string {
	return s.StepName
}

func (s *StepFunc) Run(ctx context.Context, run *model.BuildContext) error {
	return s.Fn(ctx, run)
}

// runStep retries the step on transient errors, a failed step is recorded
// as a restore-level failure and the run continues with the next step.
func (r *Restorer) runStep(ctx context.Context, step Step, run *model.BuildContext) {
	attempt := 0
	operation := func() error {
		attempt++
		err := step.Run(ctx, run)
		if err == nil {
			return nil
		}
		if !errors.IsTransient(err) {
			return backoff.Permanent(err)
		}
		r.logger.Infof(`retrying step "%s" after attempt %d: %s`, step.Name(), attempt, err)
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(newStepBackoff(), ctx)); err != nil {
		r.logger.Errorf(`step "%s" failed: %s`, step.Name(), err)
		r.recordRestoreFailure(run.ProjectID, errors.PrefixErrorf(err, `step "%s" failed`, step.Name()))
	}
}

func newStepBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 1 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, maxStepAttempts-1)
}
