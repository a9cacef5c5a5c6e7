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

import "github.com/zajel/zajel/model"

// GroupByThread partitions decrypted reply payloads by their ReplyTo
// parent-message id, preserving arrival order within each bucket.
// Payloads that are not replies, or have no ReplyTo, are ignored.
func GroupByThread(payloads []model.UpstreamPayload) map[string][]model.UpstreamPayload {
	threads := make(map[string][]model.UpstreamPayload)
	for _, p := range payloads {
		if p.Type != model.UpstreamReply || p.ReplyTo == nil {
			continue
		}
		threads[*p.ReplyTo] = append(threads[*p.ReplyTo], p)
	}
	return threads
}
