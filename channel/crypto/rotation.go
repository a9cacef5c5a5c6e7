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

package crypto

import (
	"fmt"
	"sync"
	"time"

	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/keys"
	"github.com/zajel/zajel/crypto/signer"
	"github.com/zajel/zajel/model"
	"github.com/zajel/zajel/zerr"
)

// RotationEvent records one key-epoch bump for a channel.
type RotationEvent struct {
	Timestamp   time.Time
	OldKeyEpoch uint64
	NewKeyEpoch uint64
	Reason      string
}

// Rotator generates fresh encryption keys and re-signed manifests on
// admin add/remove or key rotation, guarding against two rotations of the
// same channel running concurrently.
type Rotator struct {
	mu       sync.RWMutex
	history  map[string][]RotationEvent
	rotating map[string]bool
}

// NewRotator returns a Rotator with empty history.
func NewRotator() *Rotator {
	return &Rotator{
		history:  make(map[string][]RotationEvent),
		rotating: make(map[string]bool),
	}
}

// RotateEncryptionKey generates a new agreement keypair for ch, bumps
// Manifest.KeyEpoch, and re-signs the manifest with ownerSigner. It
// returns the new manifest and the new agreement secret the caller must
// persist; ch itself is left unmodified.
func (r *Rotator) RotateEncryptionKey(ch model.Channel, ownerSigner *signer.Signer, reason string) (model.Manifest, []byte, error) {
	r.mu.Lock()
	if r.rotating[ch.ID] {
		r.mu.Unlock()
		return model.Manifest{}, nil, zerr.New("rotation.rotateencryptionkey", zerr.Internal, fmt.Errorf("channel %s is already rotating", ch.ID))
	}
	r.rotating[ch.ID] = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.rotating, ch.ID)
		r.mu.Unlock()
	}()

	newAgreement, err := keys.GenerateAgreementKeyPair()
	if err != nil {
		return model.Manifest{}, nil, err
	}

	next := ch.Manifest
	next.CurrentEncryptKey = codec.B64Encode(newAgreement.Public())
	oldEpoch := next.KeyEpoch
	next.KeyEpoch++

	signed, err := SignManifest(next, ownerSigner)
	if err != nil {
		return model.Manifest{}, nil, err
	}

	r.mu.Lock()
	r.history[ch.ID] = append(r.history[ch.ID], RotationEvent{
		Timestamp:   time.Now(),
		OldKeyEpoch: oldEpoch,
		NewKeyEpoch: signed.KeyEpoch,
		Reason:      reason,
	})
	r.mu.Unlock()

	return signed, newAgreement.Secret(), nil
}

// History returns a channel's rotation events, newest first.
func (r *Rotator) History(channelID string) []RotationEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.history[channelID]
	out := make([]RotationEvent, len(events))
	for i, e := range events {
		out[len(events)-1-i] = e
	}
	return out
}
