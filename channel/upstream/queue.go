// Copyright (C) 2025 zajel-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package upstream

import (
	"sync"

	"github.com/zajel/zajel/zerr"
)

// DefaultPendingCapacity is the bounded queue size used when no send
// channel is attached (spec.md §4.10 Queueing).
const DefaultPendingCapacity = 100

// SendFunc delivers one sealed envelope to the attached transport.
type SendFunc func(SealedEnvelope) error

// PendingQueue buffers sealed envelopes produced while no send function is
// attached. Attaching drains the queue in insertion order; once attached,
// sends happen immediately. The queue drops new entries once full rather
// than blocking the caller.
type PendingQueue struct {
	mu       sync.Mutex
	capacity int
	pending  []SealedEnvelope
	send     SendFunc
}

// NewPendingQueue returns an empty queue with the given bounded capacity.
func NewPendingQueue(capacity int) *PendingQueue {
	return &PendingQueue{capacity: capacity}
}

// SendOrQueue delivers envelope immediately if a send function is
// attached; otherwise it appends to the bounded pending queue, dropping
// the envelope with zerr.QueueFull if the queue is already at capacity.
func (q *PendingQueue) SendOrQueue(envelope SealedEnvelope) error {
	q.mu.Lock()
	send := q.send
	q.mu.Unlock()

	if send != nil {
		return send(envelope)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) >= q.capacity {
		return zerr.New("upstream.sendorqueue", zerr.QueueFull, nil)
	}
	q.pending = append(q.pending, envelope)
	return nil
}

// Attach wires send as the queue's transport and drains any pending
// envelopes in insertion order. Returns the first drain error
// encountered, if any; envelopes already delivered are not re-queued.
func (q *PendingQueue) Attach(send SendFunc) error {
	q.mu.Lock()
	q.send = send
	drained := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, envelope := range drained {
		if err := send(envelope); err != nil {
			return err
		}
	}
	return nil
}

// Detach removes the attached send function; subsequent sends queue again.
func (q *PendingQueue) Detach() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.send = nil
}

// Len returns the number of envelopes currently pending (0 while attached).
func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
