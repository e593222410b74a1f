package model

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadInstance(t *testing.T) *Instance {
	t.Helper()
	data, err := os.ReadFile("testdata/instance.json")
	require.NoError(t, err)
	var instance Instance
	require.NoError(t, json.Unmarshal(data, &instance))
	return &instance
}

func TestAppTreePaths(t *testing.T) {
	instance := loadInstance(t)

	for scenario, tc := range map[string]struct {
		lookup   func(string) (string, bool)
		name     string
		expected string
		found    bool
	}{
		"nested table":                {lookup: instance.GetTablePath, name: "person", expected: "/peopleApp/greetingsApp/person", found: true},
		"table in top level app":      {lookup: instance.GetTablePath, name: "city", expected: "/miscellaneous/city", found: true},
		"process":                     {lookup: instance.GetProcessPath, name: "person.bulkEdit", expected: "/peopleApp/greetingsApp/person.bulkEdit", found: true},
		"nested app":                  {lookup: instance.GetAppPath, name: "greetingsApp", expected: "/peopleApp/greetingsApp", found: true},
		"top level app without apps":  {lookup: instance.GetAppPath, name: "miscellaneous", expected: "/miscellaneous", found: true},
		"top level app with apps":     {lookup: instance.GetAppPath, name: "peopleApp", found: false},
		"unknown table":               {lookup: instance.GetTablePath, name: "nope", found: false},
		"table name is not a process": {lookup: instance.GetProcessPath, name: "person", found: false},
	} {
		t.Run(scenario, func(t *testing.T) {
			path, found := tc.lookup(tc.name)
			require.Equal(t, tc.found, found)
			require.Equal(t, tc.expected, path)
		})
	}
}

func TestAuthenticationKeepsUnknownKeys(t *testing.T) {
	var auth Authentication
	require.NoError(t, json.Unmarshal([]byte(`{"name":"auth0","type":"AUTH_0","values":{"clientId":"abc"}}`), &auth))
	require.Equal(t, "auth0", auth.Name)
	require.Equal(t, "AUTH_0", auth.Type)
	require.Equal(t, map[string]any{"clientId": "abc"}, auth.Data["values"])

	out, err := json.Marshal(auth)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"auth0","type":"AUTH_0","values":{"clientId":"abc"}}`, string(out))
}

func TestProcessHasStep(t *testing.T) {
	p := &Process{Name: "greet", FrontendSteps: []*FrontendStep{{Name: "setup"}, {Name: "result"}}}
	require.True(t, p.HasStep("setup"))
	require.False(t, p.HasStep("review"))
}

func TestRecordDisplayValue(t *testing.T) {
	r := &Record{
		Values:        map[string]any{"id": float64(7), "name": "Darin", "empty": nil},
		DisplayValues: map[string]string{"name": "Darin K."},
	}
	require.Equal(t, "Darin K.", r.DisplayValue("name"))
	require.Equal(t, "7", r.DisplayValue("id"))
	require.Equal(t, "", r.DisplayValue("empty"))
	require.Equal(t, "", r.DisplayValue("missing"))
}
