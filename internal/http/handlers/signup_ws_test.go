package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/provisioning"
)

func dialSignup(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/signup"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads frames until one of type want arrives and returns it.
func readUntil(t *testing.T, conn *websocket.Conn, want string) serverFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var f serverFrame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == want {
			return f
		}
	}
}

func TestSignupSocketAvailabilityAndSubmit(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.CreateProfile(context.Background(), models.ProfileRecord{UserID: "u0", Username: "alice"}))
	conn := dialSignup(t, env)

	hello := readUntil(t, conn, frameState)
	assert.NotEmpty(t, hello.FormID)
	assert.Equal(t, "idle", hello.State)

	require.NoError(t, conn.WriteJSON(clientFrame{Type: frameUsername, Username: "alice"}))
	f := readUntil(t, conn, frameAvailability)
	assert.Equal(t, "alice", f.Username)
	require.NotNil(t, f.Available)
	assert.False(t, *f.Available)

	req := validRegistration()
	require.NoError(t, conn.WriteJSON(clientFrame{Type: frameSubmit, Registration: &req}))

	var states []string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var outcome serverFrame
	for {
		var f serverFrame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == frameState {
			states = append(states, f.State)
		}
		if f.Type == frameOutcome {
			outcome = f
			break
		}
	}
	assert.Equal(t, []string{"validating", "creating_account", "creating_profile", "done"}, states)
	assert.Equal(t, provisioning.OutcomeSuccess.String(), outcome.Outcome)
	require.NotNil(t, outcome.Feedback)
	assert.Equal(t, "/login", outcome.Feedback.RedirectTo)
	require.NotNil(t, outcome.Account)
	assert.Equal(t, "a@b.com", outcome.Account.Email)
}

func TestSignupSocketRejectsUnknownFrames(t *testing.T) {
	env := newTestEnv(t)
	conn := dialSignup(t, env)

	require.NoError(t, conn.WriteJSON(clientFrame{Type: "dance"}))
	f := readUntil(t, conn, frameError)
	assert.Equal(t, "unknown message type", f.Message)

	require.NoError(t, conn.WriteJSON(clientFrame{Type: frameSubmit}))
	f = readUntil(t, conn, frameError)
	assert.Equal(t, "registration is required", f.Message)
}

func TestSignupSocketValidationOutcome(t *testing.T) {
	env := newTestEnv(t)
	conn := dialSignup(t, env)

	req := validRegistration()
	req.TermsAccepted = false
	require.NoError(t, conn.WriteJSON(clientFrame{Type: frameSubmit, Registration: &req}))

	f := readUntil(t, conn, frameOutcome)
	assert.Equal(t, provisioning.OutcomeRejected.String(), f.Outcome)
	require.NotNil(t, f.Feedback)
	assert.Contains(t, f.Feedback.Fields, "termsAccepted")
	assert.Nil(t, f.Account)
	assert.EqualValues(t, 0, env.provider.signUps.Load())
}
