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
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zajel/zajel/relay/fallback"
	"github.com/zajel/zajel/relay/health"
	"github.com/zajel/zajel/relaytransport/httprelay"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Probe relay node health and fallback ordering",
}

func init() {
	rootCmd.AddCommand(relayCmd)
}

var (
	relayStatusNodes       string
	relayStatusRoutingHash string
	relayStatusEpoch       string
)

var relayStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch a routing hash from one or more relay nodes and report their health",
	Example: `  zajelctl relay status --nodes http://a.example,http://b.example \
    --routing-hash 7f3a... --epoch 492841`,
	RunE: runRelayStatus,
}

func init() {
	relayCmd.AddCommand(relayStatusCmd)

	relayStatusCmd.Flags().StringVar(&relayStatusNodes, "nodes", "", "Comma-separated relay base URLs")
	relayStatusCmd.Flags().StringVar(&relayStatusRoutingHash, "routing-hash", "", "Routing fingerprint to fetch")
	relayStatusCmd.Flags().StringVar(&relayStatusEpoch, "epoch", "", "Epoch label to fetch")
	relayStatusCmd.MarkFlagRequired("nodes")
	relayStatusCmd.MarkFlagRequired("routing-hash")
	relayStatusCmd.MarkFlagRequired("epoch")
}

func runRelayStatus(cmd *cobra.Command, args []string) error {
	nodes := strings.Split(relayStatusNodes, ",")
	tracker := health.New(5*time.Minute, 32)

	for _, url := range nodes {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		relay := httprelay.New(url)
		_, result, err := relay.Fetch(context.Background(), relayStatusRoutingHash, relayStatusEpoch)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: fetch error: %v\n", url, err)
			continue
		}
		tracker.Record(relayStatusRoutingHash, url, result, time.Now())
		fmt.Printf("%s: %s\n", url, result)
	}

	candidates := tracker.AllNodes()
	selector := fallback.New(tracker)
	ordered := selector.NodeFallbackOrder(candidates)

	fmt.Println("\nfallback order (best first):")
	for i, n := range ordered {
		fmt.Printf("%d. %-40s success=%d failure=%d suspected_blocking=%v\n",
			i+1, n.URL, n.SuccessCount, n.FailureCount, n.SuspectedBlocking)
	}

	if best := selector.BestNode(candidates); best != "" {
		fmt.Printf("\nbest node: %s\n", best)
	}
	return nil
}
