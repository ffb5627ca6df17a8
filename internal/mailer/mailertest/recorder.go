// Package mailertest provides an in-memory Mailer for tests.
package mailertest

import (
	"errors"
	"sync"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/mailer"
)

var ErrSendFailed = errors.New("mailertest: send failed")

// Recorder keeps every message it is asked to send. When Fail is set, Send
// records nothing and returns ErrSendFailed.
type Recorder struct {
	mu   sync.Mutex
	sent []mailer.Message
	Fail bool
}

func (r *Recorder) Send(to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return ErrSendFailed
	}
	r.sent = append(r.sent, mailer.Message{To: to, Subject: subject, Body: body})
	return nil
}

func (r *Recorder) SetFail(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Fail = fail
}

func (r *Recorder) Sent() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]mailer.Message, len(r.sent))
	copy(out, r.sent)
	return out
}

// SentTo returns the messages addressed to to, oldest first.
func (r *Recorder) SentTo(to string) []mailer.Message {
	var out []mailer.Message
	for _, m := range r.Sent() {
		if m.To == to {
			out = append(out, m)
		}
	}
	return out
}
