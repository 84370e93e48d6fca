// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(r *Receiver) []Message {
	var ms []Message
	for {
		m, ok := r.TryRecv()
		if !ok {
			return ms
		}
		ms = append(ms, m)
	}
}

func TestFIFO(t *testing.T) {
	r := NewReceiver()
	s := r.Sender()
	g := r.GenSender()
	s.Send(1)
	g.Send(2)
	s.Send(3)
	assert.Equal(t, []Message{1, 2, 3}, drain(r))
	_, ok := r.TryRecv()
	assert.False(t, ok)
}

func TestGenerationFiltering(t *testing.T) {
	r := NewReceiver()
	old := r.GenSender()
	s := r.Sender()
	old.Send("stale before")
	s.Send("load")
	r.IncrementGen()
	old.Send("stale after")
	cur := r.GenSender()
	assert.Equal(t, uint64(1), cur.Generation())
	cur.Send("fresh")

	assert.Equal(t, []Message{"load", "fresh"}, drain(r))
}

func TestWake(t *testing.T) {
	r := NewReceiver()
	select {
	case <-r.Wake():
		t.Fatal("woken without a message")
	default:
	}
	r.Sender().Send(CancelLoad{})
	r.Sender().Send(CancelLoad{})
	<-r.Wake()
	select {
	case <-r.Wake():
		t.Fatal("wake is not coalesced")
	default:
	}
	assert.Len(t, drain(r), 2)
}

func TestConcurrentSenders(t *testing.T) {
	r := NewReceiver()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := r.GenSender()
			for j := range 100 {
				s.Send(i*100 + j)
			}
		}()
	}
	wg.Wait()
	ms := drain(r)
	require.Len(t, ms, 800)

	// per-sender order is preserved
	last := map[int]int{}
	for _, m := range ms {
		v := m.(int)
		if l, ok := last[v/100]; ok {
			assert.Greater(t, v, l)
		}
		last[v/100] = v
	}
}
