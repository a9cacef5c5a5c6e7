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

// Package routing derives the opaque, rotating routing fingerprint that
// relays see in place of a channel's real identity (spec.md §4.7). Both
// sides of a channel's membership derive identical fingerprints for the
// same wall-clock epoch without ever exchanging them.
package routing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/zajel/zajel/zerr"
)

// Duration names the bucket width an epoch rotates on.
type Duration string

const (
	Hourly Duration = "hourly"
	Daily  Duration = "daily"
)

const (
	hourMillis = int64(time.Hour / time.Millisecond)
	dayMillis  = int64(24 * time.Hour / time.Millisecond)
)

// periodMillis returns the bucket width in milliseconds for d.
func periodMillis(d Duration) (int64, error) {
	switch d {
	case Hourly:
		return hourMillis, nil
	case Daily:
		return dayMillis, nil
	default:
		return 0, zerr.New("routing.periodmillis", zerr.Malformed, fmt.Errorf("unknown duration %q", d))
	}
}

// Epoch identifies a routing-fingerprint-stable time bucket.
type Epoch struct {
	Duration Duration
	Number   int64
}

// EpochNumber returns floor(unix_ms(t) / period_ms(duration)).
func EpochNumber(t time.Time, duration Duration) (int64, error) {
	period, err := periodMillis(duration)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli() / period, nil
}

// EpochAt returns the Epoch containing t for the given duration.
func EpochAt(t time.Time, duration Duration) (Epoch, error) {
	n, err := EpochNumber(t, duration)
	if err != nil {
		return Epoch{}, err
	}
	return Epoch{Duration: duration, Number: n}, nil
}

// Label returns "epoch:<duration_name>:<n>".
func (e Epoch) Label() string {
	return EpochLabel(e.Duration, e.Number)
}

// EpochLabel returns "epoch:<duration_name>:<n>".
func EpochLabel(duration Duration, n int64) string {
	return fmt.Sprintf("epoch:%s:%d", duration, n)
}

// EpochRange returns the inclusive list of epoch numbers covering
// [fromT, toT] for duration.
func EpochRange(fromT, toT time.Time, duration Duration) ([]int64, error) {
	from, err := EpochNumber(fromT, duration)
	if err != nil {
		return nil, err
	}
	to, err := EpochNumber(toT, duration)
	if err != nil {
		return nil, err
	}
	if from > to {
		from, to = to, from
	}
	out := make([]int64, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out, nil
}

// RoutingFingerprint returns the first 16 bytes of
// HMAC-SHA-256(channelSecret, label), hex-encoded in lowercase.
func RoutingFingerprint(channelSecret []byte, label string) string {
	mac := hmac.New(sha256.New, channelSecret)
	mac.Write([]byte(label))
	sum := mac.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// FingerprintForEpoch derives the routing fingerprint for epoch number n of
// duration, used both for the current epoch and for catch-up fetches on
// past epochs.
func FingerprintForEpoch(channelSecret []byte, n int64, duration Duration) string {
	return RoutingFingerprint(channelSecret, EpochLabel(duration, n))
}

// CurrentFingerprint derives the routing fingerprint for the epoch
// containing t.
func CurrentFingerprint(channelSecret []byte, t time.Time, duration Duration) (string, error) {
	n, err := EpochNumber(t, duration)
	if err != nil {
		return "", err
	}
	return FingerprintForEpoch(channelSecret, n, duration), nil
}
