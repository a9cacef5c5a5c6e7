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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/keys"
	"github.com/zajel/zajel/crypto/verify"
	"github.com/zajel/zajel/pairwise/replay"
	"github.com/zajel/zajel/pairwise/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Establish, encrypt, decrypt, and inspect pairwise sessions",
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func newSessionManager(ownSecretB64 string) (*session.Manager, error) {
	ownSecret, err := codec.B64Decode(ownSecretB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode own secret: %w", err)
	}
	ownKP, err := keys.AgreementKeyPairFromSecret(ownSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to load own agreement key: %w", err)
	}
	return session.NewManager(ownKP), nil
}

var (
	sessionOwnSecret  string
	sessionPeerPublic string
	sessionPeerID     string
)

func addPeerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sessionOwnSecret, "own-secret", "", "Own X25519 agreement secret, base64")
	cmd.Flags().StringVar(&sessionPeerPublic, "peer-public", "", "Peer's X25519 agreement public key, base64")
	cmd.Flags().StringVar(&sessionPeerID, "peer-id", "", "Peer identifier, mixed into key derivation")
	cmd.MarkFlagRequired("own-secret")
	cmd.MarkFlagRequired("peer-public")
	cmd.MarkFlagRequired("peer-id")
}

var sessionEstablishCmd = &cobra.Command{
	Use:   "establish",
	Short: "Derive a pairwise session key with a peer and report whether it has expired",
	Example: `  zajelctl session establish --own-secret <b64> --peer-public <b64> --peer-id alice`,
	RunE: runSessionEstablish,
}

func init() {
	sessionCmd.AddCommand(sessionEstablishCmd)
	addPeerFlags(sessionEstablishCmd)
}

func runSessionEstablish(cmd *cobra.Command, args []string) error {
	mgr, err := newSessionManager(sessionOwnSecret)
	if err != nil {
		return err
	}
	if err := mgr.EstablishSession(sessionPeerID, sessionPeerPublic); err != nil {
		return fmt.Errorf("failed to establish session: %w", err)
	}

	fmt.Printf("session established with %s\n", sessionPeerID)
	fmt.Printf("expired: %v\n", mgr.IsExpired(sessionPeerID))
	return nil
}

var (
	sessionMessage string
	sessionStream  string
)

var sessionEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Establish a session and encrypt one message to a peer",
	Example: `  zajelctl session encrypt --own-secret <b64> --peer-public <b64> --peer-id alice --message "hi"`,
	RunE: runSessionEncrypt,
}

func init() {
	sessionCmd.AddCommand(sessionEncryptCmd)
	addPeerFlags(sessionEncryptCmd)
	sessionEncryptCmd.Flags().StringVarP(&sessionMessage, "message", "m", "", "Plaintext message")
	sessionEncryptCmd.Flags().StringVar(&sessionStream, "stream", "text", "Replay stream (text, binary)")
}

func runSessionEncrypt(cmd *cobra.Command, args []string) error {
	mgr, err := newSessionManager(sessionOwnSecret)
	if err != nil {
		return err
	}
	if err := mgr.EstablishSession(sessionPeerID, sessionPeerPublic); err != nil {
		return fmt.Errorf("failed to establish session: %w", err)
	}

	wire, err := mgr.Encrypt(sessionPeerID, streamFromFlag(sessionStream), []byte(sessionMessage))
	if err != nil {
		return fmt.Errorf("failed to encrypt message: %w", err)
	}

	fmt.Println(codec.B64Encode(wire))
	return nil
}

var sessionCiphertext string

var sessionDecryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Establish a session and decrypt one message from a peer",
	Example: `  zajelctl session decrypt --own-secret <b64> --peer-public <b64> --peer-id alice --ciphertext <b64>`,
	RunE: runSessionDecrypt,
}

func init() {
	sessionCmd.AddCommand(sessionDecryptCmd)
	addPeerFlags(sessionDecryptCmd)
	sessionDecryptCmd.Flags().StringVar(&sessionCiphertext, "ciphertext", "", "Base64-encoded sealed message")
	sessionDecryptCmd.Flags().StringVar(&sessionStream, "stream", "text", "Replay stream (text, binary)")
	sessionDecryptCmd.MarkFlagRequired("ciphertext")
}

func runSessionDecrypt(cmd *cobra.Command, args []string) error {
	mgr, err := newSessionManager(sessionOwnSecret)
	if err != nil {
		return err
	}
	if err := mgr.EstablishSession(sessionPeerID, sessionPeerPublic); err != nil {
		return fmt.Errorf("failed to establish session: %w", err)
	}

	wire, err := codec.B64Decode(sessionCiphertext)
	if err != nil {
		return fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	plaintext, err := mgr.Decrypt(sessionPeerID, streamFromFlag(sessionStream), wire)
	if err != nil {
		return fmt.Errorf("failed to decrypt message: %w", err)
	}

	fmt.Println(string(plaintext))
	return nil
}

func streamFromFlag(name string) replay.Stream {
	if name == "binary" {
		return replay.StreamBinary
	}
	return replay.StreamText
}

var (
	fingerprintOwnPublic  string
	fingerprintPeerPublic string
)

var sessionFingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Print a mutual safety number for two agreement public keys",
	Example: `  zajelctl session fingerprint --own-public <b64> --peer-public <b64>`,
	RunE: runSessionFingerprint,
}

func init() {
	sessionCmd.AddCommand(sessionFingerprintCmd)
	sessionFingerprintCmd.Flags().StringVar(&fingerprintOwnPublic, "own-public", "", "Own X25519 agreement public key, base64")
	sessionFingerprintCmd.Flags().StringVar(&fingerprintPeerPublic, "peer-public", "", "Peer's X25519 agreement public key, base64")
	sessionFingerprintCmd.MarkFlagRequired("own-public")
	sessionFingerprintCmd.MarkFlagRequired("peer-public")
}

func runSessionFingerprint(cmd *cobra.Command, args []string) error {
	ownPublic, err := codec.B64Decode(fingerprintOwnPublic)
	if err != nil {
		return fmt.Errorf("failed to decode own public key: %w", err)
	}
	peerPublic, err := codec.B64Decode(fingerprintPeerPublic)
	if err != nil {
		return fmt.Errorf("failed to decode peer public key: %w", err)
	}

	number, err := verify.MutualSafetyNumber(ownPublic, peerPublic)
	if err != nil {
		return fmt.Errorf("failed to compute safety number: %w", err)
	}

	fmt.Println(number)
	return nil
}
