package service

import (
	"container/list"
	"context"
	"sync"

	"github.com/okian/motion/internal/domain/classify"
	"github.com/okian/motion/internal/domain/model"
	"github.com/okian/motion/internal/domain/types"
)

// jobEntry tracks one submitted job until it is evicted. elem is set once the
// job finishes.
type jobEntry struct {
	job  types.Job
	meta actionShape
	done chan struct{}
	elem *list.Element
}

// actionShape is what a finished job reports about its input.
type actionShape struct {
	points int
	bins   int
}

func shapeOf(a model.Action) actionShape {
	return actionShape{points: a.Len(), bins: a.Bins()}
}

// jobStore holds job states and wakes waiters when a job finishes. Pending
// jobs are always kept; the oldest finished jobs are forgotten once more than
// retention of them are held.
type jobStore struct {
	mu        sync.Mutex
	jobs      map[string]*jobEntry
	order     *list.List
	retention int
}

func newJobStore(retention int) *jobStore {
	return &jobStore{
		jobs:      make(map[string]*jobEntry),
		order:     list.New(),
		retention: retention,
	}
}

// add registers a pending job. It reports false if the id is already known.
func (s *jobStore) add(jobID, requestID string, action model.Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[jobID]; ok {
		return false
	}
	e := &jobEntry{
		job:  types.Job{JobID: jobID, RequestID: requestID, Status: types.JobPending},
		meta: shapeOf(action),
		done: make(chan struct{}),
	}
	s.jobs[jobID] = e
	return true
}

// remove forgets a job that never reached the queue.
func (s *jobStore) remove(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.jobs[jobID]; ok {
		if e.elem != nil {
			s.order.Remove(e.elem)
		}
		delete(s.jobs, jobID)
	}
}

// Complete records a job outcome. It satisfies the worker pool's sink.
func (s *jobStore) Complete(_ context.Context, jobID string, result classify.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[jobID]
	if !ok || e.job.Status != types.JobPending {
		return
	}
	if err != nil {
		e.job.Status = types.JobFailed
		e.job.Error = err.Error()
	} else {
		c := toClassification(result, e.meta)
		e.job.Status = types.JobDone
		e.job.Result = &c
	}
	close(e.done)

	e.elem = s.order.PushBack(jobID)
	for s.retention > 0 && s.order.Len() > s.retention {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.jobs, oldest.Value.(string))
	}
}

// get returns a copy of the job state.
func (s *jobStore) get(jobID string) (types.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[jobID]
	if !ok {
		return types.Job{}, false
	}
	return e.job, true
}

// wait blocks until jobID finishes and returns its final state, which stays
// readable even if retention forgets the job meanwhile.
func (s *jobStore) wait(ctx context.Context, jobID string) (types.Job, bool, error) {
	s.mu.Lock()
	e, ok := s.jobs[jobID]
	s.mu.Unlock()
	if !ok {
		return types.Job{}, false, nil
	}
	select {
	case <-e.done:
	case <-ctx.Done():
		return types.Job{}, true, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.job, true, nil
}

func (s *jobStore) counts() map[types.JobStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[types.JobStatus]int{}
	for _, e := range s.jobs {
		out[e.job.Status]++
	}
	return out
}

func toClassification(res classify.Result, shape actionShape) types.Classification {
	votes := make([]types.Vote, len(res.Votes))
	for i, v := range res.Votes {
		votes[i] = types.Vote{Label: v.Label.String(), Count: v.Count}
	}
	return types.Classification{
		Label:  res.Label.String(),
		Votes:  votes,
		Total:  res.Total,
		Points: shape.points,
		Bins:   shape.bins,
	}
}
