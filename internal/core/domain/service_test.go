package domain

import (
	"errors"
	"testing"
)

func TestServiceDefinitionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		def     ServiceDefinition
		wantErr bool
	}{
		{
			name: "valid",
			def: ServiceDefinition{
				FeatureQueryURL:  "https://services.arcgis.com/abc/FeatureServer/0/query",
				VectorTileBase:   "https://tiles.arcgis.com/abc/VectorTileServer",
				AllowedOutFields: []string{"OBJECTID", "NAME"},
			},
		},
		{
			name: "valid with trailing slash",
			def: ServiceDefinition{
				FeatureQueryURL:  "https://host/layer/0/query/",
				AllowedOutFields: []string{"NAME"},
			},
		},
		{
			name: "missing query suffix",
			def: ServiceDefinition{
				FeatureQueryURL:  "https://host/layer/0",
				AllowedOutFields: []string{"NAME"},
			},
			wantErr: true,
		},
		{
			name: "empty url",
			def: ServiceDefinition{
				AllowedOutFields: []string{"NAME"},
			},
			wantErr: true,
		},
		{
			name: "empty field list",
			def: ServiceDefinition{
				FeatureQueryURL: "https://host/layer/0/query",
			},
			wantErr: true,
		},
		{
			name: "blank field name",
			def: ServiceDefinition{
				FeatureQueryURL:  "https://host/layer/0/query",
				AllowedOutFields: []string{"NAME", "  "},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.def.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("validation failures must carry AG-ARG-4001, got %v", err)
			}
		})
	}
}

func TestServiceDefinitionClone(t *testing.T) {
	t.Parallel()

	def := &ServiceDefinition{
		FeatureQueryURL:  "https://host/0/query",
		AllowedOutFields: []string{"A", "B"},
	}
	c := def.Clone()
	c.AllowedOutFields[0] = "Z"
	if def.AllowedOutFields[0] != "A" {
		t.Error("Clone must not share the field slice")
	}
}
