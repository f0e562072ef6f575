package zonemerge

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Job is one input to merge against a shared template.
type Job struct {
	// ID identifies the job in results and logs. A random ID is assigned when empty.
	ID string

	// Name is a caller label, typically the input file name.
	Name string

	Input *MergeInput
}

// Result holds the outcome of one Job.
type Result struct {
	JobID  string
	Name   string
	Output string

	// Err is non-nil if the job failed or never ran.
	Err error
}

// MergeAll merges every job against t with at most Config.Workers merges in
// flight. The template is shared read-only; each job has its own input.
//
// Results are returned in job order whether or not an error occurred. A job
// failure does not stop the others. The returned error is a *MultiError of
// failed jobs, or ctx.Err() if the context was canceled first.
func (e *Engine) MergeAll(ctx context.Context, t *Template, jobs []Job) ([]Result, error) {
	if t == nil {
		return nil, &NotLoadedError{What: "template"}
	}

	logger := e.Logger()
	results := make([]Result, len(jobs))

	workers := e.Config().Workers
	if workers <= 0 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		results[i] = Result{JobID: job.ID, Name: job.Name}

		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			out, err := e.Merge(t, job.Input)
			if err != nil {
				results[i].Err = WithContext(err, "merge job", map[string]interface{}{"job": job.ID})
				logger.WithFields(Fields{"job": job.ID, "name": job.Name}).Warn("Batch job failed: %v", err)
				return nil
			}
			results[i].Output = out
			return nil
		})
	}

	// Jobs report failures through their Result; the group never fails.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}

	failures := NewMultiError()
	for _, r := range results {
		if r.Err != nil {
			failures.Add(fmt.Errorf("job %s: %w", r.JobID, r.Err))
		}
	}

	logger.WithFields(Fields{
		"jobs":   len(jobs),
		"failed": failures.Len(),
	}).Debug("Batch merge complete")

	if failures.Len() == 0 {
		return results, nil
	}
	return results, failures
}

// MergeAll runs a batch merge on the default engine.
func MergeAll(ctx context.Context, t *Template, jobs []Job) ([]Result, error) {
	return DefaultEngine.MergeAll(ctx, t, jobs)
}
