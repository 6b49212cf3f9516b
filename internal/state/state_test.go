package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cojovi/cmac-chat-module-win86/internal/config"
	"github.com/cojovi/cmac-chat-module-win86/internal/model"
	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
)

func newContainer(t *testing.T) *Container {
	t.Helper()
	return New(config.Default(), config.Credentials{}, logger.NewNop())
}

func TestNewStartsIdleAndUnknown(t *testing.T) {
	c := newContainer(t)

	assert.Equal(t, model.PhaseIdle, c.Status().Phase)

	conn := c.Connectivity()
	assert.Equal(t, model.ServiceUnknown, conn.Whisper.Phase)
	assert.Equal(t, model.ServiceUnknown, conn.OpenWebUI.Phase)
	assert.Equal(t, model.ServiceUnknown, conn.ElevenLabs.Phase)
	assert.Zero(t, conn.LastChecked)

	conv := c.Conversation()
	assert.NotEmpty(t, conv.ID)
	assert.Empty(t, conv.Messages)
	assert.Equal(t, model.DefaultMaxMessages, conv.MaxMessages)
}

func TestSetStatus(t *testing.T) {
	c := newContainer(t)

	c.SetStatus(model.Status{Phase: model.PhaseThinking})
	assert.Equal(t, model.PhaseThinking, c.Status().Phase)

	c.SetStatus(model.ErrorStatus("chat failed"))
	st := c.Status()
	assert.Equal(t, model.PhaseError, st.Phase)
	assert.Equal(t, "chat failed", st.Message)
}

func TestAppendMessageTrimsOldest(t *testing.T) {
	c := newContainer(t)

	for i := 0; i < model.DefaultMaxMessages+5; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		c.AppendMessage(role, string(rune('a'+i)))
	}

	msgs := c.History()
	require.Len(t, msgs, model.DefaultMaxMessages)

	// The five oldest messages were dropped; order is preserved.
	assert.Equal(t, string(rune('a'+5)), msgs[0].Content)
	assert.Equal(t, string(rune('a'+model.DefaultMaxMessages+4)), msgs[len(msgs)-1].Content)
}

func TestClearConversationIssuesFreshID(t *testing.T) {
	c := newContainer(t)

	oldID := c.Conversation().ID
	c.AppendMessage(model.RoleUser, "hello")
	require.Len(t, c.History(), 1)

	c.ClearConversation()

	conv := c.Conversation()
	assert.Empty(t, conv.Messages)
	assert.NotEqual(t, oldID, conv.ID)
}

func TestConversationReturnsCopy(t *testing.T) {
	c := newContainer(t)
	c.AppendMessage(model.RoleUser, "hello")

	conv := c.Conversation()
	conv.Messages[0].Content = "mutated"

	assert.Equal(t, "hello", c.History()[0].Content)
}

func TestSetServiceStateBumpsLastChecked(t *testing.T) {
	c := newContainer(t)
	times := []int64{100, 200}
	i := 0
	c.now = func() int64 { v := times[i%len(times)]; i++; return v }

	c.SetServiceState(model.ServiceWhisper, model.Connected())
	first := c.Connectivity()
	assert.Equal(t, model.ServiceConnected, first.Whisper.Phase)
	assert.Equal(t, int64(100), first.LastChecked)

	c.SetServiceState(model.ServiceElevenLabs, model.Disconnected("connection refused"))
	second := c.Connectivity()
	assert.Equal(t, model.ServiceDisconnected, second.ElevenLabs.Phase)
	assert.Equal(t, "connection refused", second.ElevenLabs.Reason)
	assert.Equal(t, int64(200), second.LastChecked)

	// Other services untouched.
	assert.Equal(t, model.ServiceConnected, second.Whisper.Phase)
	assert.Equal(t, model.ServiceUnknown, second.OpenWebUI.Phase)
}

func TestSetServiceStateUnknownServiceIgnored(t *testing.T) {
	c := newContainer(t)
	c.SetServiceState("mystery", model.Connected())
	assert.Zero(t, c.Connectivity().LastChecked)
}

func TestAllConnected(t *testing.T) {
	c := newContainer(t)
	assert.False(t, c.AllConnected())

	c.SetServiceState(model.ServiceWhisper, model.Connected())
	c.SetServiceState(model.ServiceOpenWebUI, model.Connected())
	assert.False(t, c.AllConnected())

	c.SetServiceState(model.ServiceElevenLabs, model.Connected())
	assert.True(t, c.AllConnected())
}
