package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreatesWithDefaults(t *testing.T) {
	st := NewStore()

	sess := st.Get("abc")

	assert.Equal(t, "abc", sess.ID)
	assert.Equal(t, DefaultPayload(), sess.Form)
	assert.Equal(t, 1, sess.CurrentStep)
	assert.Equal(t, 1, sess.MaxStepReached)
	assert.Equal(t, 1, st.Len())
}

func TestStore_UpdateMutatesAndReturnsCopy(t *testing.T) {
	st := NewStore()

	updated := st.Update("abc", func(sess *Session) {
		sess.Form.GlassStyle = "p516"
	})
	assert.Equal(t, "p516", updated.Form.GlassStyle)

	// The returned value is a snapshot, not a live reference.
	updated.Form.GlassStyle = "clear"
	assert.Equal(t, "p516", st.Get("abc").Form.GlassStyle)
}

func TestStore_Reset(t *testing.T) {
	st := NewStore()
	st.Update("abc", func(sess *Session) {
		sess.Form.Mode = ModeInspiration
		sess.GoToNextStep(true)
	})

	sess := st.Reset("abc")

	assert.Equal(t, DefaultPayload(), sess.Form)
	assert.Equal(t, 1, sess.CurrentStep)
}

func TestStore_ExpiredInfoClearedOnAccess(t *testing.T) {
	st := NewStore()
	st.Update("abc", func(sess *Session) {
		sess.Form.ShowerShape = "neo_angle"
		sess.HandleEnclosureChange("sliding")
	})

	require.NotEmpty(t, st.Get("abc").InfoMessage)

	// Force the deadline into the past, then any access clears it.
	st.Update("abc", func(sess *Session) {
		sess.infoExpiresAt = time.Now().Add(-time.Second)
	})
	assert.Empty(t, st.Get("abc").InfoMessage)
}

func TestStore_DeleteAndPrune(t *testing.T) {
	st := NewStore()
	st.Get("a")
	st.Get("b")

	st.Delete("a")
	assert.Equal(t, 1, st.Len())

	// Update refreshes UpdatedAt, so age the session directly.
	st.mu.Lock()
	st.m["b"].UpdatedAt = time.Now().Add(-2 * time.Hour)
	st.mu.Unlock()

	assert.Equal(t, 1, st.PruneIdle(time.Hour))
	assert.Equal(t, 0, st.Len())
}
