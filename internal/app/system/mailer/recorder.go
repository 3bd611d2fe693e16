package mailer

import (
	"context"
	"sync"
)

// Recorder is an in-memory Sender for development and tests. Fail, when set,
// is returned for recipients it reports true for.
type Recorder struct {
	mu   sync.Mutex
	Sent []Email
	Fail func(to string) bool
}

func (r *Recorder) Send(ctx context.Context, e Email) error {
	if r.Fail != nil && r.Fail(e.To) {
		return errSendFailed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, e)
	return nil
}

// Count returns how many messages were recorded.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Sent)
}

type sendError string

func (e sendError) Error() string { return string(e) }

const errSendFailed = sendError("mailer: send failed")
