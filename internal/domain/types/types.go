// Package types contains the wire shapes shared by the HTTP layer and the CLI.
package types

// Sample is one DataPoint on the wire: [velocity, position, effort].
type Sample [3]float64

// ClassifyRequest carries an action either as explicit samples or as a raw
// CSV record line. Samples take precedence when both are set.
type ClassifyRequest struct {
	Samples []Sample `json:"samples,omitempty"`
	Record  string   `json:"record,omitempty"`
}

// JobRequest submits an action for asynchronous classification.
type JobRequest struct {
	RequestID string `json:"request_id"`
	ClassifyRequest
}

// Vote is the number of per-point votes a label received.
type Vote struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Classification is the outcome of classifying one action.
type Classification struct {
	Label  string `json:"label"`
	Votes  []Vote `json:"votes"`
	Total  int    `json:"total"`
	Points int    `json:"points"`
	Bins   int    `json:"bins"`
}

// JobStatus is the lifecycle state of an asynchronous job.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job reports the state of an asynchronous classification.
type Job struct {
	JobID     string          `json:"job_id"`
	RequestID string          `json:"request_id,omitempty"`
	Status    JobStatus       `json:"status"`
	Duplicate bool            `json:"duplicate,omitempty"`
	Result    *Classification `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// LibraryCounts is the number of reference actions per category.
type LibraryCounts struct {
	Lifts  int `json:"lifts"`
	Sweeps int `json:"sweeps"`
}
