// Package batch reports per-item outcomes of bulk catalog writes.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of writing one product.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the product id.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts results by status.
type Summary struct {
	OK     int
	Failed int
}

// Summarize counts the results of one load.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.status == StatusOK {
			s.OK++
		} else {
			s.Failed++
		}
	}
	return s
}
