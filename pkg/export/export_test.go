package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Date", "Teacher"},
		Rows: [][]string{
			{"2026-09-07", "t1"},
			{"2026-09-08", "t2"},
		},
	}

	content, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Teacher", lines[0])
	assert.Equal(t, "2026-09-07,t1", lines[1])
}

func TestCSVExporterPadsShortRows(t *testing.T) {
	data := Dataset{
		Headers: []string{"Date", "Teacher", "Student"},
		Rows:    [][]string{{"2026-09-07"}},
	}

	content, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2026-09-07,,", lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Date", "Teacher"},
		Rows:    [][]string{{"2026-09-07", "t1"}},
	}

	content, err := NewPDFExporter().Render(data, "Weekly Schedule")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "%PDF"))
}
