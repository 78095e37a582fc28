package tabulated

import (
	"testing"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    Metadata
		wantErr bool
	}{
		{
			name: "full",
			yaml: "name: m\nmechanism: mech.yaml\nwpath: w.csv\nipath: wi.csv\nversion: 1.0\nclosure_temperature: 1200\n",
			want: Metadata{Name: "m", Mechanism: "mech.yaml", WeightsPath: "w.csv", InversePath: "wi.csv", Version: "1", ClosureTemperature: 1200},
		},
		{
			name: "string version and defaults",
			yaml: "mechanism: mech.yaml\nwpath: w.csv\nversion: \"2.1\"\nrpath: regressor\n",
			want: Metadata{Mechanism: "mech.yaml", WeightsPath: "w.csv", Regressor: "regressor", Version: "2.1", ClosureTemperature: DefaultClosureTemperature},
		},
		{
			name: "closure temperature as string",
			yaml: "mechanism: m.yaml\nwpath: w.csv\nclosure_temperature: \"900.5\"\n",
			want: Metadata{Mechanism: "m.yaml", WeightsPath: "w.csv", ClosureTemperature: 900.5},
		},
		{name: "missing mechanism", yaml: "wpath: w.csv\n", wantErr: true},
		{name: "missing weights", yaml: "mechanism: m.yaml\n", wantErr: true},
		{name: "negative closure", yaml: "mechanism: m.yaml\nwpath: w.csv\nclosure_temperature: -4\n", wantErr: true},
		{name: "bad closure", yaml: "mechanism: m.yaml\nwpath: w.csv\nclosure_temperature: hot\n", wantErr: true},
		{name: "nested name", yaml: "mechanism: m.yaml\nwpath: w.csv\nname: {a: 1}\n", wantErr: true},
		{name: "not a mapping", yaml: "- a\n- b\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetadata([]byte(tt.yaml))
			if tt.wantErr {
				require.ErrorIs(t, err, eos.ErrInvalidModel)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, *got)
		})
	}
}

func TestReadMetadataMissing(t *testing.T) {
	_, err := ReadMetadata("nowhere/metadata.yaml")
	require.ErrorIs(t, err, eos.ErrInvalidModel)
}
