package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryStatusTerminal(t *testing.T) {
	assert.False(t, StatusWaiting.Terminal())
	assert.False(t, StatusInService.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusNoShow.Terminal())
}

func TestTierOrdering(t *testing.T) {
	// Numeric values must rank VIP above Gold above Silver above Bronze
	// above Normal; the ordering engine compares tiers directly.
	assert.True(t, TierVIP > TierGold)
	assert.True(t, TierGold > TierSilver)
	assert.True(t, TierSilver > TierBronze)
	assert.True(t, TierBronze > TierNormal)
}

func TestAgentStatusActive(t *testing.T) {
	assert.True(t, AgentAvailable.Active())
	assert.True(t, AgentBusy.Active())
	assert.False(t, AgentOnBreak.Active())
	assert.False(t, AgentOffline.Active())
}

func TestValidAgentStatus(t *testing.T) {
	for _, s := range []string{"AVAILABLE", "BUSY", "ON_BREAK", "OFFLINE"} {
		assert.True(t, ValidAgentStatus(s), s)
	}
	assert.False(t, ValidAgentStatus("RESTING"))
	assert.False(t, ValidAgentStatus(""))
}
