package censor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zajel/zajel/model"
)

func alwaysHealthy(string) float64 { return 1.0 }

func TestClassifyNoneWithInsufficientRecords(t *testing.T) {
	records := []HistoryRecord{{VpsURL: "vps-a", Result: model.FetchBlocked}}
	require.Equal(t, None, Classify(records, alwaysHealthy))
}

func TestClassifyRoutingHashBlockedForOneBlockingNode(t *testing.T) {
	records := []HistoryRecord{
		{VpsURL: "vps-a", Result: model.FetchBlocked},
		{VpsURL: "vps-a", Result: model.FetchBlocked},
		{VpsURL: "vps-a", Result: model.FetchSuccess},
	}
	require.Equal(t, RoutingHashBlocked, Classify(records, alwaysHealthy))
}

func TestClassifyWidespreadBlockingForTwoBlockingNodes(t *testing.T) {
	records := []HistoryRecord{
		{VpsURL: "vps-a", Result: model.FetchBlocked},
		{VpsURL: "vps-a", Result: model.FetchBlocked},
		{VpsURL: "vps-b", Result: model.FetchBlocked},
		{VpsURL: "vps-b", Result: model.FetchBlocked},
	}
	require.Equal(t, WidespreadBlocking, Classify(records, alwaysHealthy))
}

func TestClassifyIgnoresGenerallyFailingNode(t *testing.T) {
	lowSuccess := func(string) float64 { return 0.1 }
	records := []HistoryRecord{
		{VpsURL: "vps-a", Result: model.FetchBlocked},
		{VpsURL: "vps-a", Result: model.FetchBlocked},
	}
	require.Equal(t, None, Classify(records, lowSuccess))
}

func TestClassifyNodeUnreachableWhenAllNetworkErrors(t *testing.T) {
	records := []HistoryRecord{
		{VpsURL: "vps-a", Result: model.FetchNetworkError},
		{VpsURL: "vps-b", Result: model.FetchNetworkError},
	}
	require.Equal(t, NodeUnreachable, Classify(records, alwaysHealthy))
}

func TestClassifyNoneForMixedBenignResults(t *testing.T) {
	records := []HistoryRecord{
		{VpsURL: "vps-a", Result: model.FetchSuccess},
		{VpsURL: "vps-a", Result: model.FetchEmpty},
	}
	require.Equal(t, None, Classify(records, alwaysHealthy))
}
