package autoreply

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykvlv/autoreply-bot/internal/domain"
)

func TestTempMode_ActivateResetRestoresSnapshot(t *testing.T) {
	h := newHarness(t)
	keep := h.addRule(t, "work", "09:00-17:00")
	drop := h.addRule(t, "driving", "22:00-06:00")
	h.addRule(t, "gym", "18:00-19:00")
	h.enableRules(t)
	before := h.ruleSet(t)

	res, err := h.session.Temp.Activate(h.ctx, "vacation", 0)
	require.NoError(t, err)
	assert.False(t, res.Switched)
	assert.Len(t, res.Override.SavedRules, 3)
	assert.True(t, res.Override.SavedRulesEnabled)
	assert.Nil(t, res.Override.ExpiresAt)

	st, err := h.session.Controls.State(h.ctx)
	require.NoError(t, err)
	assert.False(t, st.CustomRulesEnabled)

	// churn the live rule book while the override is active
	h.addRule(t, "study", "07:00-08:00")
	_, err = h.repo.DeleteRule(h.ctx, testOwner, drop.ID)
	require.NoError(t, err)

	reset, err := h.session.Temp.Reset(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, reset.Restored)
	assert.True(t, reset.CustomRulesEnabled)
	assert.Equal(t, "vacation", reset.Category)

	assert.Equal(t, before, h.ruleSet(t))
	st, err = h.session.Controls.State(h.ctx)
	require.NoError(t, err)
	assert.True(t, st.CustomRulesEnabled)

	got, err := h.session.Rules.Find(h.ctx, keep.ShortID())
	require.NoError(t, err)
	assert.Equal(t, keep.ID, got.ID, "restored rules keep their ids")
}

func TestTempMode_RestoresDisabledFlag(t *testing.T) {
	h := newHarness(t)
	h.addRule(t, "work", "09:00-17:00")

	_, err := h.session.Temp.Activate(h.ctx, "busy", 0)
	require.NoError(t, err)
	_, err = h.session.Temp.Reset(h.ctx)
	require.NoError(t, err)

	st, err := h.session.Controls.State(h.ctx)
	require.NoError(t, err)
	assert.False(t, st.CustomRulesEnabled)
}

func TestTempMode_ReactivateKeepsBaseline(t *testing.T) {
	h := newHarness(t)
	h.addRule(t, "work", "09:00-17:00")
	h.enableRules(t)

	_, err := h.session.Temp.Activate(h.ctx, "lunch", time.Hour)
	require.NoError(t, err)
	h.addRule(t, "gym", "18:00-19:00")

	res, err := h.session.Temp.Activate(h.ctx, "meetings", 0)
	require.NoError(t, err)
	assert.True(t, res.Switched)
	assert.Equal(t, "meetings", res.Override.Category)
	assert.Nil(t, res.Override.ExpiresAt, "manual re-activation clears the expiry")
	require.Len(t, res.Override.SavedRules, 1)
	assert.True(t, res.Override.SavedRulesEnabled)

	_, err = h.session.Temp.Reset(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, []ruleTuple{{"work", "09:00-17:00"}}, h.ruleSet(t))
}

func TestTempMode_ResetWithoutOverride(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Temp.Reset(h.ctx)
	assert.ErrorIs(t, err, domain.ErrNoOverride)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTempMode_RejectsUnknownCategory(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Temp.Activate(h.ctx, "nap", 0)
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	ov, err := h.session.Temp.Status(h.ctx)
	require.NoError(t, err)
	assert.Nil(t, ov)
}

func TestTempMode_ResetIfExpired(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Temp.Activate(h.ctx, "lunch", 10*time.Minute)
	require.NoError(t, err)

	done, err := h.session.Temp.ResetIfExpired(h.ctx)
	require.NoError(t, err)
	assert.False(t, done)

	h.clock.Advance(10 * time.Minute)
	done, err = h.session.Temp.ResetIfExpired(h.ctx)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = h.session.Temp.ResetIfExpired(h.ctx)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestTempMode_ResetIfExpiredSparesReactivated(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Temp.Activate(h.ctx, "lunch", 10*time.Minute)
	require.NoError(t, err)

	h.clock.Advance(11 * time.Minute)
	_, err = h.session.Resolver.Resolve(h.ctx)
	require.NoError(t, err)
	require.Len(t, h.spawned, 1)

	// the owner re-activates before the queued reset runs
	_, err = h.session.Temp.Activate(h.ctx, "focus", 0)
	require.NoError(t, err)
	h.runSpawned()

	ov, err := h.session.Temp.Status(h.ctx)
	require.NoError(t, err)
	require.NotNil(t, ov)
	assert.Equal(t, "focus", ov.Category)
}

func TestControls_CustomOnBlockedDuringOverride(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Temp.Activate(h.ctx, "dnd", 0)
	require.NoError(t, err)

	_, err = h.session.Controls.SetCustomRules(h.ctx, true)
	assert.ErrorIs(t, err, domain.ErrOverrideActive)

	changed, err := h.session.Controls.SetCustomRules(h.ctx, false)
	require.NoError(t, err)
	assert.False(t, changed)
}

// expiredLunch leaves a 10m lunch override that expired a minute ago with no
// sweep run, over a rule book of one enabled work rule.
func expiredLunch(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	h.addRule(t, "work", "09:00-17:00")
	h.enableRules(t)
	_, err := h.session.Temp.Activate(h.ctx, "lunch", 10*time.Minute)
	require.NoError(t, err)
	h.clock.Advance(11 * time.Minute)
	return h
}

func TestTempMode_StatusRestoresExpired(t *testing.T) {
	h := expiredLunch(t)

	ov, err := h.session.Temp.Status(h.ctx)
	require.NoError(t, err)
	assert.Nil(t, ov)

	st, err := h.session.Controls.State(h.ctx)
	require.NoError(t, err)
	assert.True(t, st.CustomRulesEnabled, "saved flag is back")
	_, err = h.session.Temp.Reset(h.ctx)
	assert.ErrorIs(t, err, domain.ErrNoOverride)
}

func TestControls_CustomOnAfterExpiry(t *testing.T) {
	h := expiredLunch(t)
	_, err := h.session.Controls.SetCustomRules(h.ctx, false)
	require.NoError(t, err)

	changed, err := h.session.Controls.SetCustomRules(h.ctx, true)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestTempMode_ActivateAfterExpiryTakesFreshSnapshot(t *testing.T) {
	h := expiredLunch(t)
	h.addRule(t, "gym", "18:00-19:00")

	res, err := h.session.Temp.Activate(h.ctx, "busy", 0)
	require.NoError(t, err)
	assert.False(t, res.Switched)
	assert.Len(t, res.Override.SavedRules, 2)
	assert.True(t, res.Override.SavedRulesEnabled)

	_, err = h.session.Temp.Reset(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, []ruleTuple{{"work", "09:00-17:00"}, {"gym", "18:00-19:00"}}, h.ruleSet(t))
}

func TestGate_ConfirmAfterExpiryDeletesFromRestoredRules(t *testing.T) {
	h := expiredLunch(t)
	require.NoError(t, h.session.Gate.Request(h.ctx, domain.ActionDeleteCategory, "work"))

	res, err := h.session.Gate.Confirm(h.ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Affected)
	assert.Empty(t, h.ruleSet(t))

	ov, err := h.session.Temp.Status(h.ctx)
	require.NoError(t, err)
	assert.Nil(t, ov)
}
