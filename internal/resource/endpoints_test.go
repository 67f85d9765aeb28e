package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itdash/internal/model"
)

func TestNewEndpoints(t *testing.T) {
	catalog := []model.Resource{
		{Name: "tasks", Path: "tasks"},
		{Name: "clients", Path: "clients"},
		{Name: "events", Path: "events"},
	}

	endpoints, err := NewEndpoints("http://localhost:8000/api/", map[string]string{
		"clients": "https://crm.example.com/v2/clients/",
		"events":  "calendar/events",
	}, catalog)
	require.NoError(t, err)

	tests := []struct {
		name string
		want string
	}{
		{name: "tasks", want: "http://localhost:8000/api/tasks"},
		{name: "clients", want: "https://crm.example.com/v2/clients"},
		{name: "events", want: "http://localhost:8000/api/calendar/events"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := endpoints.URL(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := endpoints.URL("projects")
	assert.False(t, ok)
}

func TestNewEndpoints_Errors(t *testing.T) {
	catalog := []model.Resource{{Name: "tasks", Path: "tasks"}}

	tests := []struct {
		name      string
		base      string
		overrides map[string]string
	}{
		{name: "relative base", base: "/api"},
		{name: "unparseable base", base: "http://[::1"},
		{name: "unknown override", base: "http://localhost", overrides: map[string]string{"widgets": "w"}},
		{name: "empty override", base: "http://localhost", overrides: map[string]string{"tasks": "/"}},
		{name: "absolute override without host", base: "http://localhost", overrides: map[string]string{"tasks": "http:///tasks"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEndpoints(tt.base, tt.overrides, catalog)
			assert.Error(t, err)
		})
	}
}

func TestNewEndpoints_FullCatalog(t *testing.T) {
	endpoints, err := NewEndpoints("http://localhost:8000", nil, model.Catalog)
	require.NoError(t, err)

	for _, r := range model.Catalog {
		got, ok := endpoints.URL(r.Name)
		require.True(t, ok, r.Name)
		assert.Equal(t, "http://localhost:8000/"+r.Path, got)
	}
}
