package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/barbershop-queue/internal/model"
)

func TestClassifyTier(t *testing.T) {
	cases := []struct {
		name   string
		visits int
		vip    bool
		want   model.Tier
	}{
		{"new client", 0, false, model.TierNormal},
		{"below bronze", 4, false, model.TierNormal},
		{"bronze threshold", 5, false, model.TierBronze},
		{"bronze range", 9, false, model.TierBronze},
		{"silver threshold", 10, false, model.TierSilver},
		{"silver range", 19, false, model.TierSilver},
		{"gold threshold", 20, false, model.TierGold},
		{"gold high", 500, false, model.TierGold},
		{"vip overrides zero visits", 0, true, model.TierVIP},
		{"vip overrides gold visits", 40, true, model.TierVIP},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyTier(tc.visits, tc.vip))
		})
	}
}

func TestTierLabels(t *testing.T) {
	assert.Equal(t, "VIP", model.TierVIP.Label())
	assert.Equal(t, "Normal", model.TierNormal.Label())
	// unknown values fall back to Normal rather than leaking a number
	assert.Equal(t, "Normal", model.Tier(99).Label())
}
