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

// Package chunk splits an already-encrypted payload into signed wire
// chunks and reassembles a verified set of chunks back into the original
// bytes (spec.md §4.9).
package chunk

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/signer"
	"github.com/zajel/zajel/model"
	"github.com/zajel/zajel/zerr"
)

// Size constants (spec.md §4.9).
const (
	ChunkSize           = 64 * 1024
	MaxMessageSize      = 50 * 1024 * 1024
	MaxChunkPayloadSize = 2 * ChunkSize
	chunkIDSize         = 20
)

// AuthorIdentity is the signing identity used to author chunks for one
// message: owners sign with their owner key, admins with their admin key.
type AuthorIdentity struct {
	Signer       *signer.Signer
	AuthorPubkey string // base64, matching signer.Signer's public key
}

// Split slices encryptedPayload (already AEAD-encrypted by channel/crypto)
// into ChunkSize pieces, signs each piece concurrently, and returns the
// resulting Chunk set in index order. encryptedPayload must not exceed
// MaxMessageSize.
func Split(ctx context.Context, encryptedPayload []byte, sequence uint64, routingHash string, author AuthorIdentity) ([]model.Chunk, error) {
	if len(encryptedPayload) > MaxMessageSize {
		return nil, zerr.New("chunk.split", zerr.Malformed, nil)
	}

	totalChunks := (len(encryptedPayload) + ChunkSize - 1) / ChunkSize
	if totalChunks == 0 {
		totalChunks = 1
	}

	chunks := make([]model.Chunk, totalChunks)
	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < totalChunks; i++ {
		i := i
		group.Go(func() error {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			default:
			}

			start := i * ChunkSize
			end := min(start+ChunkSize, len(encryptedPayload))
			slice := encryptedPayload[start:end]

			chunkID, err := randomChunkID()
			if err != nil {
				return err
			}

			sig, err := author.Signer.Sign(slice)
			if err != nil {
				return err
			}

			chunks[i] = model.Chunk{
				ChunkID:          chunkID,
				RoutingHash:      routingHash,
				Sequence:         sequence,
				ChunkIndex:       i,
				TotalChunks:      totalChunks,
				Size:             len(slice),
				Signature:        codec.B64Encode(sig),
				AuthorPubkey:     author.AuthorPubkey,
				EncryptedPayload: slice,
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// VerifyAndReassemble validates a complete chunk set against
// authorisedKeys (base64-encoded signing public keys) and concatenates the
// chunks' encrypted payload slices in index order.
func VerifyAndReassemble(chunks []model.Chunk, authorisedKeys []string) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, zerr.New("chunk.verifyandreassemble", zerr.Malformed, nil)
	}

	sequence := chunks[0].Sequence
	totalChunks := chunks[0].TotalChunks
	if len(chunks) != totalChunks {
		return nil, zerr.New("chunk.verifyandreassemble", zerr.Malformed, nil)
	}

	seenIndex := make(map[int]bool, totalChunks)
	ordered := make([][]byte, totalChunks)

	for _, c := range chunks {
		if c.Sequence != sequence || c.TotalChunks != totalChunks {
			return nil, zerr.New("chunk.verifyandreassemble", zerr.Malformed, nil)
		}
		if c.ChunkIndex < 0 || c.ChunkIndex >= totalChunks {
			return nil, zerr.New("chunk.verifyandreassemble", zerr.Malformed, nil)
		}
		if seenIndex[c.ChunkIndex] {
			return nil, zerr.New("chunk.verifyandreassemble", zerr.Malformed, nil)
		}
		seenIndex[c.ChunkIndex] = true

		if !slices.Contains(authorisedKeys, c.AuthorPubkey) {
			return nil, zerr.New("chunk.verifyandreassemble", zerr.UnknownAuthor, nil)
		}
		if len(c.EncryptedPayload) > MaxChunkPayloadSize {
			return nil, zerr.New("chunk.verifyandreassemble", zerr.Malformed, nil)
		}

		authorKey, err := codec.B64Decode(c.AuthorPubkey)
		if err != nil {
			return nil, err
		}
		sig, err := codec.B64Decode(c.Signature)
		if err != nil {
			return nil, err
		}
		if err := signer.Verify(authorKey, c.EncryptedPayload, sig); err != nil {
			return nil, err
		}

		ordered[c.ChunkIndex] = c.EncryptedPayload
	}

	var out bytes.Buffer
	for _, piece := range ordered {
		out.Write(piece)
	}
	return out.Bytes(), nil
}

func randomChunkID() ([]byte, error) {
	id := make([]byte, chunkIDSize)
	if _, err := io.ReadFull(rand.Reader, id); err != nil {
		return nil, zerr.New("chunk.randomchunkid", zerr.Internal, err)
	}
	return id, nil
}
