// Package natsleaf provides a leaf act that performs a NATS request/reply
// exchange without ever blocking the tick loop. The first tick publishes the
// request and opens an inbox subscription; subsequent ticks poll the inbox.
// The leaf settles SUCCESS on a positive reply, FAIL on a negative reply, and
// FAIL with a timeout error once the configured deadline passes.
package natsleaf

import (
	"bytes"
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wehubfusion/Talos/pkg/act"
	sdkerrors "github.com/wehubfusion/Talos/pkg/errors"
)

// A reply whose body starts with this marker is treated as a failure, in the
// manner of NATS service API error responses.
var failurePrefix = []byte("-")

// Conn is the subset of *nats.Conn the leaf needs. It is narrow so tests can
// substitute an in-memory implementation.
type Conn interface {
	PublishRequest(subj, reply string, data []byte) error
	ChanSubscribe(subj string, ch chan *nats.Msg) (*nats.Subscription, error)
}

// Leaf issues one request per run and polls for the reply across ticks.
type Leaf struct {
	act.Base
	conn    Conn
	subject string
	payload []byte
	timeout time.Duration

	inbox     chan *nats.Msg
	sub       *nats.Subscription
	deadline  time.Time
	started   bool
	suspended bool
	remaining time.Duration
	reply     *nats.Msg
	lastErr   error

	now func() time.Time // stubbed in tests
}

// New creates a request/reply leaf. The timeout bounds how long the leaf
// reports RUNNING while waiting for a reply; it must be positive.
func New(name string, conn Conn, subject string, payload []byte, timeout time.Duration) (*Leaf, error) {
	if conn == nil {
		return nil, sdkerrors.Malformed(name, sdkerrors.NewError(
			sdkerrors.CodeMalformed, "connection cannot be nil", nil))
	}
	if subject == "" {
		return nil, sdkerrors.Malformed(name, sdkerrors.NewError(
			sdkerrors.CodeMalformed, "subject cannot be empty", nil))
	}
	if timeout <= 0 {
		return nil, sdkerrors.Malformed(name, sdkerrors.NewError(
			sdkerrors.CodeMalformed, "timeout must be greater than 0", nil))
	}
	return &Leaf{
		Base:    act.NewBase(name),
		conn:    conn,
		subject: subject,
		payload: payload,
		timeout: timeout,
		now:     time.Now,
	}, nil
}

// Tick publishes the request on the first step and polls the reply inbox on
// every later step. It never blocks waiting for the reply.
func (l *Leaf) Tick(ctx context.Context) (act.Status, error) {
	if l.Completed() {
		return act.StatusFail, sdkerrors.Completed(l.Name())
	}

	if !l.started {
		if err := l.publish(); err != nil {
			l.lastErr = err
			return l.Complete(act.StatusFail), nil
		}
		l.started = true
		l.deadline = l.now().Add(l.timeout)
		return act.StatusRunning, nil
	}

	select {
	case msg := <-l.inbox:
		l.reply = msg
		l.teardown()
		if bytes.HasPrefix(msg.Data, failurePrefix) {
			return l.Complete(act.StatusFail), nil
		}
		return l.Complete(act.StatusSuccess), nil
	default:
	}

	if !l.now().Before(l.deadline) {
		l.lastErr = sdkerrors.NewError(sdkerrors.CodeLeafFailure,
			"no reply on subject "+l.subject+" within "+l.timeout.String(),
			sdkerrors.ErrTimeout)
		l.teardown()
		return l.Complete(act.StatusFail), nil
	}
	return act.StatusRunning, nil
}

func (l *Leaf) publish() error {
	inbox := nats.NewInbox()
	ch := make(chan *nats.Msg, 1)
	sub, err := l.conn.ChanSubscribe(inbox, ch)
	if err != nil {
		return sdkerrors.NewError(sdkerrors.CodeLeafFailure, "failed to subscribe to reply inbox", err)
	}
	if err := l.conn.PublishRequest(l.subject, inbox, l.payload); err != nil {
		sub.Unsubscribe()
		return sdkerrors.NewError(sdkerrors.CodeLeafFailure, "failed to publish request", err)
	}
	l.inbox = ch
	l.sub = sub
	return nil
}

func (l *Leaf) teardown() {
	if l.sub != nil {
		l.sub.Unsubscribe()
		l.sub = nil
	}
}

// Reply returns the reply message that settled the leaf, or nil if the leaf
// has not received one since its last reset.
func (l *Leaf) Reply() *nats.Msg {
	return l.reply
}

// Err returns the publish or timeout error from the current run, if any.
func (l *Leaf) Err() error {
	return l.lastErr
}

// Suspend freezes the time remaining until the reply deadline. The inbox
// subscription stays open so a reply arriving while suspended is not lost.
func (l *Leaf) Suspend() {
	if !l.started || l.suspended || l.Completed() {
		return
	}
	l.remaining = l.deadline.Sub(l.now())
	l.suspended = true
}

// Resume re-arms the reply deadline with the time that remained at Suspend.
func (l *Leaf) Resume() {
	if !l.suspended {
		return
	}
	l.deadline = l.now().Add(l.remaining)
	l.suspended = false
}

// Reset abandons any in-flight request so the next tick issues a fresh one.
func (l *Leaf) Reset() {
	l.teardown()
	l.inbox = nil
	l.started = false
	l.suspended = false
	l.remaining = 0
	l.reply = nil
	l.lastErr = nil
	l.Base.Reset()
}
