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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	channelcrypto "github.com/zajel/zajel/channel/crypto"
	"github.com/zajel/zajel/channel/chunk"
	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/keys"
	"github.com/zajel/zajel/crypto/signer"
	"github.com/zajel/zajel/model"
	"github.com/zajel/zajel/relaytransport/httprelay"
	"github.com/zajel/zajel/routing"
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Create, publish to, and subscribe to a broadcast channel",
}

func init() {
	rootCmd.AddCommand(channelCmd)
}

// channelState is the CLI's on-disk record of a channel, extending
// model.Channel with the local publish sequence counter.
type channelState struct {
	Channel  model.Channel `json:"channel"`
	Sequence uint64        `json:"sequence"`
}

func loadChannelState(path string) (*channelState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel file: %w", err)
	}
	var st channelState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse channel file: %w", err)
	}
	return &st, nil
}

func saveChannelState(path string, st *channelState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal channel state: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0600)
}

var (
	channelName        string
	channelDescription string
	channelOutput      string
)

var channelCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new channel and sign its manifest",
	Long: `Create a new channel, generating a fresh owner signing key pair and
encryption (agreement) key pair, and sign the resulting manifest.`,
	Example: `  zajelctl channel create --name "News" --description "announcements" --output channel.json`,
	RunE:    runChannelCreate,
}

func init() {
	channelCmd.AddCommand(channelCreateCmd)

	channelCreateCmd.Flags().StringVar(&channelName, "name", "", "Channel display name")
	channelCreateCmd.Flags().StringVar(&channelDescription, "description", "", "Channel description")
	channelCreateCmd.Flags().StringVarP(&channelOutput, "output", "o", "channel.json", "Output channel state file")
}

func runChannelCreate(cmd *cobra.Command, args []string) error {
	ownerSigning, err := keys.GenerateSigningKeyPair()
	if err != nil {
		return fmt.Errorf("failed to generate owner signing key: %w", err)
	}
	encryptKP, err := keys.GenerateAgreementKeyPair()
	if err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}

	channelID, err := keys.DeriveChannelID(ownerSigning.Public())
	if err != nil {
		return fmt.Errorf("failed to derive channel id: %w", err)
	}

	manifest := model.Manifest{
		ChannelID:         channelID,
		Name:              channelName,
		Description:       channelDescription,
		OwnerKey:          codec.B64Encode(ownerSigning.Public()),
		CurrentEncryptKey: codec.B64Encode(encryptKP.Public()),
		KeyEpoch:          1,
		Rules: model.Rules{
			RepliesEnabled:  true,
			PollsEnabled:    false,
			MaxUpstreamSize: 65536,
			AllowedTypes:    []string{"text"},
		},
	}

	owner := signer.New(ownerSigning)
	signed, err := channelcrypto.SignManifest(manifest, owner)
	if err != nil {
		return fmt.Errorf("failed to sign manifest: %w", err)
	}

	st := &channelState{
		Channel: model.Channel{
			ID:                 channelID,
			Role:               model.RoleOwner,
			Manifest:           signed,
			EncryptionSecret:   encryptKP.Secret(),
			EncryptionPublic:   encryptKP.Public(),
			OwnerSigningSecret: ownerSigning.Secret()[:32],
			CreatedAt:          time.Now().UTC(),
		},
	}

	if err := saveChannelState(channelOutput, st); err != nil {
		return err
	}

	fmt.Printf("channel created: %s\n", channelID)
	fmt.Printf("state written to %s\n", channelOutput)
	return nil
}

var (
	publishChannelFile string
	publishMessage     string
	publishMessageType string
	publishRelayURL    string
)

var channelPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Encrypt, split, and publish a message to a channel",
	Example: `  zajelctl channel publish --channel channel.json --message "hello subscribers"
  zajelctl channel publish --channel channel.json --message "hi" --relay http://localhost:8080`,
	RunE: runChannelPublish,
}

func init() {
	channelCmd.AddCommand(channelPublishCmd)

	channelPublishCmd.Flags().StringVarP(&publishChannelFile, "channel", "c", "channel.json", "Channel state file")
	channelPublishCmd.Flags().StringVarP(&publishMessage, "message", "m", "", "Message text to publish")
	channelPublishCmd.Flags().StringVar(&publishMessageType, "message-type", "text", "Logical message type")
	channelPublishCmd.Flags().StringVar(&publishRelayURL, "relay", "", "Relay base URL to announce chunks to (optional)")
}

func runChannelPublish(cmd *cobra.Command, args []string) error {
	st, err := loadChannelState(publishChannelFile)
	if err != nil {
		return err
	}
	if st.Channel.OwnerSigningSecret == nil && st.Channel.AdminSigningSecret == nil {
		return fmt.Errorf("channel state has no owner or admin signing secret to author with")
	}

	payload := model.ChunkPayload{
		Type:      publishMessageType,
		Bytes:     []byte(publishMessage),
		Timestamp: time.Now().UTC(),
	}

	wire, err := channelcrypto.EncryptPayload(payload, st.Channel.EncryptionSecret, st.Channel.Manifest.KeyEpoch)
	if err != nil {
		return fmt.Errorf("failed to encrypt payload: %w", err)
	}

	routingHash, err := routing.CurrentFingerprint(st.Channel.EncryptionSecret, time.Now().UTC(), routing.Hourly)
	if err != nil {
		return fmt.Errorf("failed to derive routing fingerprint: %w", err)
	}

	signingSecret := st.Channel.OwnerSigningSecret
	if signingSecret == nil {
		signingSecret = st.Channel.AdminSigningSecret
	}
	authorKP, err := keys.SigningKeyPairFromSecret(signingSecret)
	if err != nil {
		return fmt.Errorf("failed to load author signing key: %w", err)
	}
	author := chunk.AuthorIdentity{
		Signer:       signer.New(authorKP),
		AuthorPubkey: codec.B64Encode(authorKP.Public()),
	}

	st.Sequence++
	chunks, err := chunk.Split(context.Background(), wire, st.Sequence, routingHash, author)
	if err != nil {
		return fmt.Errorf("failed to split message into chunks: %w", err)
	}

	if err := saveChannelState(publishChannelFile, st); err != nil {
		return err
	}

	if publishRelayURL != "" {
		relay := httprelay.New(publishRelayURL)
		for _, c := range chunks {
			if err := relay.Announce(context.Background(), st.Channel.ID, c); err != nil {
				return fmt.Errorf("failed to announce chunk %d/%d: %w", c.ChunkIndex+1, c.TotalChunks, err)
			}
		}
		fmt.Printf("announced %d chunk(s) to %s\n", len(chunks), publishRelayURL)
		return nil
	}

	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunks: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

var (
	subscribeChannelFile string
	subscribeChunksFile  string
	subscribeRelayURL    string
	subscribeEpochLabel  string
)

var channelSubscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Verify, reassemble, and decrypt a chunk set",
	Example: `  zajelctl channel subscribe --channel channel.json --chunks chunks.json
  zajelctl channel subscribe --channel channel.json --relay http://localhost:8080 --epoch 492841`,
	RunE: runChannelSubscribe,
}

func init() {
	channelCmd.AddCommand(channelSubscribeCmd)

	channelSubscribeCmd.Flags().StringVarP(&subscribeChannelFile, "channel", "c", "channel.json", "Channel state file")
	channelSubscribeCmd.Flags().StringVar(&subscribeChunksFile, "chunks", "", "JSON file containing a chunk array to verify (skips relay fetch)")
	channelSubscribeCmd.Flags().StringVar(&subscribeRelayURL, "relay", "", "Relay base URL to fetch chunks from")
	channelSubscribeCmd.Flags().StringVar(&subscribeEpochLabel, "epoch", "", "Epoch label to fetch (required with --relay)")
}

func runChannelSubscribe(cmd *cobra.Command, args []string) error {
	st, err := loadChannelState(subscribeChannelFile)
	if err != nil {
		return err
	}

	var chunks []model.Chunk
	switch {
	case subscribeChunksFile != "":
		data, err := os.ReadFile(subscribeChunksFile)
		if err != nil {
			return fmt.Errorf("failed to read chunks file: %w", err)
		}
		if err := json.Unmarshal(data, &chunks); err != nil {
			return fmt.Errorf("failed to parse chunks file: %w", err)
		}
	case subscribeRelayURL != "":
		if subscribeEpochLabel == "" {
			return fmt.Errorf("--epoch is required with --relay")
		}
		routingHash, err := routing.CurrentFingerprint(st.Channel.EncryptionSecret, time.Now().UTC(), routing.Hourly)
		if err != nil {
			return fmt.Errorf("failed to derive routing fingerprint: %w", err)
		}
		relay := httprelay.New(subscribeRelayURL)
		fetched, result, err := relay.Fetch(context.Background(), routingHash, subscribeEpochLabel)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "fetch result: %s\n", result)
		chunks = fetched
	default:
		return fmt.Errorf("either --chunks or --relay must be given")
	}

	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to reassemble")
	}

	reassembled, err := chunk.VerifyAndReassemble(chunks, st.Channel.Manifest.AuthorisedSigningKeys())
	if err != nil {
		return fmt.Errorf("failed to verify and reassemble chunks: %w", err)
	}

	payload, err := channelcrypto.DecryptPayload(reassembled, st.Channel.EncryptionSecret, st.Channel.Manifest.KeyEpoch)
	if err != nil {
		return fmt.Errorf("failed to decrypt payload: %w", err)
	}

	fmt.Printf("type: %s\n", payload.Type)
	fmt.Printf("timestamp: %s\n", payload.Timestamp.Format(time.RFC3339))
	fmt.Printf("message: %s\n", string(payload.Bytes))
	return nil
}
