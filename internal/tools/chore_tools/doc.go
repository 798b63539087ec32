// Package chore_tools registers the MCP tools for Donetick chores and
// circle members.
//
// Read tools (chores_list, chores_get, circle_list_members) are always
// available. Write tools (chores_create, chores_update,
// chores_complete, chores_delete) are registered too but refuse to run
// while the server is in read-only mode.
package chore_tools
