package sampledata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantKind entryKind
		wantType string
		wantErr  bool
	}{
		{
			name:     "bundle",
			payload:  `{"resourceType": "Bundle", "type": "transaction"}`,
			wantKind: kindBundle,
			wantType: "Bundle",
		},
		{
			name:     "standalone patient",
			payload:  `{"resourceType": "Patient", "id": "p1"}`,
			wantKind: kindResource,
			wantType: "Patient",
		},
		{
			name:    "missing resourceType",
			payload: `{"id": "p1"}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			payload: `{not json`,
			wantErr: true,
		},
		{
			name:    "empty payload",
			payload: ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, resourceType, err := classify([]byte(tt.payload))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantType, resourceType)
		})
	}
}
