package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupWritesAtConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, slog.LevelWarn)

	logger.Info("should be filtered")
	WithOperation(logger, "test").Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be filtered")
	assert.Contains(t, out, "should appear")
	assert.Contains(t, out, "operation=test")
}

func TestErr(t *testing.T) {
	t.Run("nil error yields empty group", func(t *testing.T) {
		attr := Err(nil)
		assert.Equal(t, slog.KindGroup, attr.Value.Kind())
		assert.Empty(t, attr.Value.Group())
	})

	t.Run("non-nil error yields string attribute", func(t *testing.T) {
		attr := Err(errors.New("boom"))
		assert.Equal(t, KeyError, attr.Key)
		assert.Equal(t, "boom", attr.Value.String())
	})
}

func TestAttributeHelpers(t *testing.T) {
	assert.Equal(t, KeyMethod, Method("GET").Key)
	assert.Equal(t, "GET", Method("GET").Value.String())
	assert.Equal(t, int64(2), Attempt(2).Value.Int64())
	assert.Equal(t, "/eapi/v1/chore", Path("/eapi/v1/chore").Value.String())
	assert.Equal(t, StatusSuccess, Status(StatusSuccess).Value.String())
	assert.Equal(t, KeyCount, Count(3).Key)
	assert.Equal(t, int64(3), Count(3).Value.Int64())
	assert.Equal(t, KeyChoreID, ChoreID(7).Key)
	assert.Equal(t, int64(7), ChoreID(7).Value.Int64())
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty token", token: "", want: "<empty>"},
		{name: "masked token", token: "supersecret", want: "[token:11 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeToken(tt.token)
			if got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
			if tt.token != "" && strings.Contains(got, tt.token) {
				t.Errorf("SanitizeToken(%q) leaked the token: %q", tt.token, got)
			}
		})
	}
}
