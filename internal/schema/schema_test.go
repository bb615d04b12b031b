package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_RigConfig_Valid(t *testing.T) {
	cfg := map[string]any{
		"rigName":       "biped",
		"baseArchetype": []string{"human.cue"},
		"guides":        "guides/spine.cue",
	}
	assert.NoError(t, Validate(KindRigConfig, cfg))
}

func TestValidate_RigConfig_WrongFieldType(t *testing.T) {
	cfg := map[string]any{
		"rigName": 42, // must be a string
	}
	err := Validate(KindRigConfig, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_ComponentsFile_Valid(t *testing.T) {
	file := map[string]any{
		"dataType": "Component",
		"data": []any{
			map[string]any{
				"name": "spine01",
				"type": "rigforge.Spine",
				"parameters": map[string]any{
					"numJoints": map[string]any{"value": 5, "dataType": "int"},
				},
			},
		},
	}
	assert.NoError(t, Validate(KindComponentFile, file))
}

func TestValidate_ComponentsFile_MissingRequiredField(t *testing.T) {
	file := map[string]any{
		"dataType": "Component",
		"data": []any{
			map[string]any{
				// "type" is required and missing
				"name": "spine01",
			},
		},
	}
	assert.Error(t, Validate(KindComponentFile, file))
}

func TestValidate_ComponentsFile_BadParamDataType(t *testing.T) {
	file := map[string]any{
		"dataType": "Component",
		"data": []any{
			map[string]any{
				"name": "spine01",
				"type": "rigforge.Spine",
				"parameters": map[string]any{
					"bad": map[string]any{"value": 1, "dataType": "not-a-real-type"},
				},
			},
		},
	}
	assert.Error(t, Validate(KindComponentFile, file))
}

func TestValidate_DataFile_Valid(t *testing.T) {
	file := map[string]any{
		"dataType": "Guide",
		"data": map[string]any{
			"spine01": map[string]any{"tx": 0.0, "ty": 1.0, "tz": 0.0},
		},
	}
	assert.NoError(t, Validate(KindDataFile, file))
}

func TestValidate_UnrecognizedKind(t *testing.T) {
	err := Validate(Kind("#NotAThing"), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized kind")
}

func TestValidateFile_InvalidJSON(t *testing.T) {
	err := ValidateFile(KindRigConfig, []byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing file")
}

func TestValidateFile_ValidJSON(t *testing.T) {
	err := ValidateFile(KindRigConfig, []byte(`{"rigName": "biped"}`))
	assert.NoError(t, err)
}

func TestValidateFile_Roundtrip(t *testing.T) {
	raw := `{"dataType": "Component", "data": []}`
	err := ValidateFile(KindComponentFile, []byte(strings.TrimSpace(raw)))
	assert.NoError(t, err)
}
