package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Student", "Amount", "Status"},
		Rows: []map[string]string{
			{"Student": "Ada Obi", "Amount": "100.00", "Status": "approved"},
			{"Student": "Ben Eze", "Amount": "50.00"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Student,Amount,Status\nAda Obi,100.00,approved\nBen Eze,50.00,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}
