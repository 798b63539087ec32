package chore_tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/donetick-mcp/internal/donetick"
	"github.com/teemow/donetick-mcp/internal/server"
)

// newTestContext builds a server context whose Donetick client talks
// to the given handler.
func newTestContext(t *testing.T, handler http.Handler, readOnly bool) *server.ServerContext {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := donetick.New(donetick.Options{
		BaseURL:       ts.URL,
		APIToken:      "test-token",
		RatePerSecond: 1000,
		Burst:         100,
	})
	require.NoError(t, err)

	sc := server.NewServerContext(context.Background(), client, readOnly)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the text content of a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name   string
		args   map[string]interface{}
		want   int
		wantOk bool
	}{
		{
			name:   "number present",
			args:   map[string]interface{}{"choreId": 42.0},
			want:   42,
			wantOk: true,
		},
		{
			name:   "missing key",
			args:   map[string]interface{}{},
			wantOk: false,
		},
		{
			name:   "wrong type",
			args:   map[string]interface{}{"choreId": "42"},
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := intArg(tt.args, "choreId")
			assert.Equal(t, tt.wantOk, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRegisterChoreTools(t *testing.T) {
	for _, readOnly := range []bool{false, true} {
		sc := newTestContext(t, http.NotFoundHandler(), readOnly)

		mcpSrv := mcpserver.NewMCPServer("test-server", "1.0.0",
			mcpserver.WithToolCapabilities(true),
		)

		require.NoError(t, RegisterChoreTools(mcpSrv, sc))
	}
}

func TestHandleListChores(t *testing.T) {
	sc := newTestContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eapi/v1/chore", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Dishes","isActive":true},{"id":2,"name":"Laundry","isActive":false}]`))
	}), false)

	result, err := handleListChores(context.Background(), callRequest("chores_list", map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var chores []donetick.Chore
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &chores))
	assert.Len(t, chores, 2)
}

func TestHandleListChoresFilterActive(t *testing.T) {
	sc := newTestContext(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Dishes","isActive":true},{"id":2,"name":"Laundry","isActive":false}]`))
	}), false)

	result, err := handleListChores(context.Background(), callRequest("chores_list", map[string]interface{}{
		"filterActive": true,
	}), sc)
	require.NoError(t, err)

	var chores []donetick.Chore
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &chores))
	require.Len(t, chores, 1)
	assert.Equal(t, "Dishes", chores[0].Name)
}

func TestHandleGetChore(t *testing.T) {
	sc := newTestContext(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":7,"name":"Vacuum"}]`))
	}), false)

	result, err := handleGetChore(context.Background(), callRequest("chores_get", map[string]interface{}{
		"choreId": 7.0,
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var chore donetick.Chore
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &chore))
	assert.Equal(t, 7, chore.ID)
}

func TestHandleGetChoreNotFound(t *testing.T) {
	sc := newTestContext(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}), false)

	result, err := handleGetChore(context.Background(), callRequest("chores_get", map[string]interface{}{
		"choreId": 99.0,
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not found")
}

func TestHandleGetChoreMissingID(t *testing.T) {
	sc := newTestContext(t, http.NotFoundHandler(), false)

	result, err := handleGetChore(context.Background(), callRequest("chores_get", map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "choreId is required")
}

func TestHandleCreateChore(t *testing.T) {
	sc := newTestContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/eapi/v1/chore", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Take out trash", body["Name"])

		_, _ = w.Write([]byte(`{"id":3,"name":"Take out trash"}`))
	}), false)

	result, err := handleCreateChore(context.Background(), callRequest("chores_create", map[string]interface{}{
		"name":        "Take out trash",
		"description": "Every evening",
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "created successfully")
}

func TestHandleCreateChoreMissingName(t *testing.T) {
	sc := newTestContext(t, http.NotFoundHandler(), false)

	result, err := handleCreateChore(context.Background(), callRequest("chores_create", map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "name is required")
}

func TestHandleCompleteChore(t *testing.T) {
	sc := newTestContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eapi/v1/chore/5/complete", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("completedBy"))
		_, _ = w.Write([]byte(`{"id":5,"name":"Dishes"}`))
	}), false)

	result, err := handleCompleteChore(context.Background(), callRequest("chores_complete", map[string]interface{}{
		"choreId":     5.0,
		"completedBy": 12.0,
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "completed successfully")
}

func TestHandleDeleteChore(t *testing.T) {
	sc := newTestContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/eapi/v1/chore/9", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}), false)

	result, err := handleDeleteChore(context.Background(), callRequest("chores_delete", map[string]interface{}{
		"choreId": 9.0,
	}), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "deleted successfully")
}

func TestHandleListCircleMembers(t *testing.T) {
	sc := newTestContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eapi/v1/circle/members", r.URL.Path)
		_, _ = w.Write([]byte(`[{"userId":1,"userName":"alice","role":"admin"}]`))
	}), false)

	result, err := handleListCircleMembers(context.Background(), callRequest("circle_list_members", nil), sc)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var members []donetick.CircleMember
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &members))
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].UserName)
}

func TestWriteToolsRefuseInReadOnlyMode(t *testing.T) {
	// The upstream server must never be reached in read-only mode
	sc := newTestContext(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("unexpected request to Donetick in read-only mode")
	}), true)

	handlers := map[string]func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error){
		"chores_create":   handleCreateChore,
		"chores_update":   handleUpdateChore,
		"chores_complete": handleCompleteChore,
		"chores_delete":   handleDeleteChore,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			result, err := handler(context.Background(), callRequest(name, map[string]interface{}{
				"choreId": 1.0,
				"name":    "Chore",
			}), sc)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.True(t, strings.Contains(resultText(t, result), "read-only mode"))
		})
	}
}
