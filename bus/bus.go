// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bus is a multi-producer, single-consumer message queue.
// Messages can be tagged with the generation of the receiver at the
// time their sender was made; after [Receiver.IncrementGen], tagged
// messages from older generations are dropped.
package bus

import (
	"sync"
)

// Message is any message.
type Message any

type envelope struct {
	msg    Message
	gen    uint64
	tagged bool
}

// Receiver is the consuming end of a queue. Sending never blocks.
type Receiver struct {
	mu    sync.Mutex
	queue []envelope
	gen   uint64
	wake  chan struct{}
}

// NewReceiver returns a new empty [Receiver].
func NewReceiver() *Receiver {
	return &Receiver{wake: make(chan struct{}, 1)}
}

func (r *Receiver) send(e envelope) {
	r.mu.Lock()
	r.queue = append(r.queue, e)
	r.mu.Unlock()
	r.Nudge()
}

// Nudge wakes the consumer without sending a message.
func (r *Receiver) Nudge() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Wake returns a channel that receives a value whenever messages
// may be available.
func (r *Receiver) Wake() <-chan struct{} { return r.wake }

// TryRecv returns the next message of the current generation, or
// false if there is none. Stale messages are discarded.
func (r *Receiver) TryRecv() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.queue) > 0 {
		e := r.queue[0]
		r.queue[0] = envelope{}
		r.queue = r.queue[1:]
		if !e.tagged || e.gen == r.gen {
			return e.msg, true
		}
	}
	return nil, false
}

// Generation returns the current generation.
func (r *Receiver) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// IncrementGen orphans all generation senders made so far.
func (r *Receiver) IncrementGen() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
}

// Sender returns a sender of untagged messages, which are never
// dropped.
func (r *Receiver) Sender() *Sender { return &Sender{r: r} }

// GenSender returns a sender tagging messages with the current
// generation.
func (r *Receiver) GenSender() *GenSender {
	return &GenSender{r: r, gen: r.Generation()}
}

// Sender sends untagged messages.
type Sender struct {
	r *Receiver
}

// Send queues a message.
func (s *Sender) Send(m Message) { s.r.send(envelope{msg: m}) }

// GenSender sends messages tagged with a generation.
type GenSender struct {
	r   *Receiver
	gen uint64
}

// Generation returns the generation of the sender.
func (s *GenSender) Generation() uint64 { return s.gen }

// Send queues a message.
func (s *GenSender) Send(m Message) { s.r.send(envelope{msg: m, gen: s.gen, tagged: true}) }
