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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zajel/zajel/codec"
	zajelcrypto "github.com/zajel/zajel/crypto"
	"github.com/zajel/zajel/crypto/keys"
)

var (
	keygenType   string
	keygenOutput string
)

type keyOutput struct {
	Type   string              `json:"type"`
	Curve  zajelcrypto.KeyType `json:"curve"`
	ID     string              `json:"id"`
	Public string              `json:"public"`
	Secret string              `json:"secret"`
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a signing or agreement key pair",
	Long: `Generate a new cryptographic key pair.

Supported key types:
  - signing: Ed25519, used to sign manifests, chunks, and upstream replies
  - agreement: X25519, used to derive encryption and session keys`,
	Example: `  # Generate a channel owner's signing key
  zajelctl keygen --type signing

  # Generate a channel's encryption key pair and save it to a file
  zajelctl keygen --type agreement --output channel-encrypt.json`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVarP(&keygenType, "type", "t", "signing", "Key type (signing, agreement)")
	keygenCmd.Flags().StringVarP(&keygenOutput, "output", "o", "", "Output file (default: stdout)")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	var out keyOutput

	switch keygenType {
	case "signing":
		kp, err := keys.GenerateSigningKeyPair()
		if err != nil {
			return fmt.Errorf("failed to generate signing key pair: %w", err)
		}
		out = keyOutput{
			Type:   "signing",
			Curve:  zajelcrypto.KeyTypeSigning,
			ID:     kp.ID(),
			Public: codec.B64Encode(kp.Public()),
			Secret: codec.B64Encode(kp.Secret()),
		}
	case "agreement":
		kp, err := keys.GenerateAgreementKeyPair()
		if err != nil {
			return fmt.Errorf("failed to generate agreement key pair: %w", err)
		}
		out = keyOutput{
			Type:   "agreement",
			Curve:  zajelcrypto.KeyTypeAgreement,
			ID:     kp.ID(),
			Public: codec.B64Encode(kp.Public()),
			Secret: codec.B64Encode(kp.Secret()),
		}
	default:
		return fmt.Errorf("unsupported key type: %s", keygenType)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal key pair: %w", err)
	}
	data = append(data, '\n')

	return writeOutput(keygenOutput, data)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Printf("written to %s\n", path)
	return nil
}
