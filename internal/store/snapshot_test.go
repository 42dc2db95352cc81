package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riordanpawley/epicboard/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSnapshot_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantIDs  []string
		wantDeps [][]string
	}{
		{
			name:     "json list",
			file:     "epics.json",
			content:  `[{"id":"A","status":"planning"},{"id":"B","status":"active","dependsOn":["A"]}]`,
			wantIDs:  []string{"A", "B"},
			wantDeps: [][]string{{}, {"A"}},
		},
		{
			name:     "json snapshot object",
			file:     "epics.json",
			content:  `{"version":1,"epics":[{"id":"A","dependsOn":null},{"id":"B","dependsOn":"[\"A\"]"}]}`,
			wantIDs:  []string{"A", "B"},
			wantDeps: [][]string{{}, {"A"}},
		},
		{
			name: "yaml list",
			file: "epics.yaml",
			content: `- id: A
  status: completed
- id: B
  dependsOn: "A, C"
`,
			wantIDs:  []string{"A", "B"},
			wantDeps: [][]string{{}, {"A", "C"}},
		},
		{
			name: "yml snapshot object",
			file: "epics.yml",
			content: `version: 1
epics:
  - id: A
    dependsOn: [B, B]
`,
			wantIDs:  []string{"A"},
			wantDeps: [][]string{{"B"}},
		},
		{
			name:     "empty file",
			file:     "epics.json",
			content:  "  \n",
			wantIDs:  []string{},
			wantDeps: [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			epics, err := LoadSnapshot(path)

			require.NoError(t, err)
			ids := make([]string, len(epics))
			deps := make([][]string, len(epics))
			for i, e := range epics {
				ids[i] = e.ID
				deps[i] = e.DependsOn
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantDeps, deps)
		})
	}
}

func TestLoadSnapshot_Errors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadSnapshot(writeFile(t, "epics.txt", "[]"))
		assert.ErrorIs(t, err, domain.ErrInvalid)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := LoadSnapshot(writeFile(t, "epics.json", "[{"))
		assert.ErrorIs(t, err, domain.ErrInvalid)
	})

	t.Run("bad dependsOn type", func(t *testing.T) {
		_, err := LoadSnapshot(writeFile(t, "epics.json", `[{"id":"A","dependsOn":42}]`))
		assert.ErrorIs(t, err, domain.ErrInvalid)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestWriteSnapshot_RoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	epics := []domain.Epic{
		{ID: "A", Title: "Schema", Status: domain.StatusCompleted, DependsOn: []string{}, CreatedAt: created, UpdatedAt: created},
		{ID: "B", Title: "API", Status: domain.StatusActive, DependsOn: []string{"A"}, CreatedAt: created, UpdatedAt: created},
	}

	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sub", name)

			require.NoError(t, WriteSnapshot(path, epics))
			got, err := LoadSnapshot(path)

			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "API", got[1].Title)
			assert.Equal(t, domain.StatusActive, got[1].Status)
			assert.Equal(t, []string{"A"}, got[1].DependsOn)
			assert.True(t, created.Equal(got[0].CreatedAt))

			_, err = os.Stat(path + ".tmp")
			assert.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}

func TestWriteSnapshot_RejectsExtension(t *testing.T) {
	err := WriteSnapshot(filepath.Join(t.TempDir(), "out.csv"), nil)

	assert.ErrorIs(t, err, domain.ErrInvalid)
}
