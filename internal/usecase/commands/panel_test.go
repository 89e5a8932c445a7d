//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"keypool/internal/infra/repository"
	"keypool/internal/pkg/clock"
	"keypool/internal/usecase/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panelFixture struct {
	cmd   commands.PanelCommands
	panel *fakePanelRepo
	audit *fakeAuditRepo
	clock *clock.MockClock
}

func newPanelFixture(t *testing.T) *panelFixture {
	t.Helper()

	f := &panelFixture{
		panel: &fakePanelRepo{},
		audit: &fakeAuditRepo{},
		clock: clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.cmd = commands.NewPanelCommands(newUoW(), f.panel, f.audit, f.clock)
	return f
}

func TestPanelCommands_Publish(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	require.NoError(t, f.cmd.Publish(ctx, "slots are live"))

	state := f.panel.snapshot()
	require.NotNil(t, state)
	assert.Equal(t, repository.PanelOpen, state.Status)
	assert.Equal(t, "slots are live", state.Message)
	assert.Nil(t, state.ReopenAt)
	assert.Equal(t, []string{commands.AuditPanelReplaced}, f.audit.kinds())
}

func TestPanelCommands_Pause(t *testing.T) {
	t.Run("pause without reopen stays paused", func(t *testing.T) {
		f := newPanelFixture(t)
		ctx := context.Background()

		require.NoError(t, f.cmd.Pause(ctx, "maintenance window", nil))

		state := f.panel.snapshot()
		require.NotNil(t, state)
		assert.Equal(t, repository.PanelPaused, state.Status)
		assert.Nil(t, state.ReopenAt)
	})

	t.Run("pause records the scheduled reopen time", func(t *testing.T) {
		f := newPanelFixture(t)
		ctx := context.Background()

		after := time.Hour
		require.NoError(t, f.cmd.Pause(ctx, "back in an hour", &after))

		state := f.panel.snapshot()
		require.NotNil(t, state)
		require.NotNil(t, state.ReopenAt)
		assert.Equal(t, f.clock.Now().Add(time.Hour), *state.ReopenAt)
	})

	t.Run("timer reopens the panel", func(t *testing.T) {
		f := newPanelFixture(t)
		ctx := context.Background()

		after := 10 * time.Millisecond
		require.NoError(t, f.cmd.Pause(ctx, "blink", &after))

		assert.Eventually(t, func() bool {
			state := f.panel.snapshot()
			return state != nil && state.Status == repository.PanelOpen
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("manual reopen disarms the pending timer", func(t *testing.T) {
		f := newPanelFixture(t)
		ctx := context.Background()

		after := 20 * time.Millisecond
		require.NoError(t, f.cmd.Pause(ctx, "short pause", &after))
		require.NoError(t, f.cmd.Reopen(ctx))

		kindsBefore := len(f.audit.kinds())
		time.Sleep(60 * time.Millisecond)

		// The cancelled timer must not fire a second reopen.
		assert.Len(t, f.audit.kinds(), kindsBefore)
		state := f.panel.snapshot()
		require.NotNil(t, state)
		assert.Equal(t, repository.PanelOpen, state.Status)
	})
}

func TestPanelCommands_Clear(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	require.NoError(t, f.cmd.Publish(ctx, "up"))
	require.NoError(t, f.cmd.Clear(ctx))

	assert.Nil(t, f.panel.snapshot())
	assert.Equal(t, []string{commands.AuditPanelReplaced, commands.AuditPanelCleared}, f.audit.kinds())
}
