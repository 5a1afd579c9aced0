package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/client/api"
	"arena/internal/client/session"
)

func newTestRegistry(t *testing.T) (*Registry, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s := &session.Session{APIBaseURL: "http://127.0.0.1:0", Client: api.New("http://127.0.0.1:0")}
	return newRegistry(s, &out), &out
}

func TestRegistryLookup(t *testing.T) {
	r, _ := newTestRegistry(t)

	for _, name := range []string{"new", "step", "quick", "stress", "health", "help"} {
		cmd, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, cmd.Name)
		assert.Contains(t, groupOrder, cmd.Group, name)

		if cmd.ShortName != "" {
			short, ok := r.Lookup(cmd.ShortName)
			require.True(t, ok)
			assert.Same(t, cmd, short)
		}
	}

	_, ok := r.Lookup("login")
	assert.False(t, ok)
}

func TestRegistryExecute(t *testing.T) {
	r, out := newTestRegistry(t)

	r.Execute("   ")
	assert.Empty(t, out.String())

	r.Execute("fly away")
	assert.Contains(t, out.String(), "Unknown command: fly")

	out.Reset()
	r.Register(&Command{Name: "fail", Group: groupUtility, Handler: func(Session, []string) error {
		return errors.New("boom")
	}})
	r.Execute("fail now")
	assert.Contains(t, out.String(), "Error: boom")
}

func TestRegistryReplaceKeepsOneEntry(t *testing.T) {
	r, _ := newTestRegistry(t)
	before := len(r.ordered)

	called := false
	r.Register(&Command{Name: "health", Group: groupUtility, Handler: func(Session, []string) error {
		called = true
		return nil
	}})
	assert.Len(t, r.ordered, before)

	r.Execute("health")
	assert.True(t, called)
}

func TestHelpListsEveryCommandOnce(t *testing.T) {
	r, out := newTestRegistry(t)
	r.Execute("help")
	text := out.String()

	for _, group := range groupOrder {
		assert.Contains(t, text, group+":")
	}
	for _, cmd := range r.ordered {
		assert.Equal(t, 1, strings.Count(text, " "+cmd.Name+" "), cmd.Name)
	}

	out.Reset()
	r.Execute("help step")
	assert.Contains(t, out.String(), "Usage:")

	out.Reset()
	r.Execute("help nothing")
	assert.Contains(t, out.String(), "unknown command: nothing")
}

func TestCompleter(t *testing.T) {
	r, _ := newTestRegistry(t)
	pc := r.Completer()

	var names []string
	for _, child := range pc.GetChildren() {
		names = append(names, strings.TrimSpace(string(child.GetName())))
	}
	assert.Len(t, names, len(r.ordered))
	assert.Contains(t, names, "stress")
	assert.Contains(t, names, "help")
}
