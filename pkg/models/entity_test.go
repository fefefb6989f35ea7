package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeValue_UnmarshalJSON(t *testing.T) {
	t.Run("decodes numbers, strings and lists", func(t *testing.T) {
		var entity Entity
		payload := `{
			"id": "cand-1",
			"attributes": {
				"experience": 7,
				"rating": 4.5,
				"location": "remote",
				"skills": ["go", "postgres"],
				"certifications": []
			}
		}`
		require.NoError(t, json.Unmarshal([]byte(payload), &entity))

		assert.Equal(t, NumberValue(7), entity.Attributes["experience"])
		assert.Equal(t, NumberValue(4.5), entity.Attributes["rating"])
		assert.Equal(t, StringValue("remote"), entity.Attributes["location"])
		assert.Equal(t, ListValue("go", "postgres"), entity.Attributes["skills"])

		empty := entity.Attributes["certifications"]
		assert.Equal(t, AttributeKindList, empty.Kind)
		assert.Empty(t, empty.List)
	})

	t.Run("keeps large integers exact", func(t *testing.T) {
		var value AttributeValue
		require.NoError(t, json.Unmarshal([]byte("9007199254740992"), &value))
		assert.Equal(t, NumberValue(9007199254740992), value)
	})

	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name:    "rejects booleans",
			payload: `{"active": true}`,
			wantErr: "unsupported attribute value type",
		},
		{
			name:    "rejects null",
			payload: `{"notes": null}`,
			wantErr: "unsupported attribute value type",
		},
		{
			name:    "rejects objects",
			payload: `{"address": {"city": "Austin"}}`,
			wantErr: "unsupported attribute value type",
		},
		{
			name:    "rejects mixed lists",
			payload: `{"skills": ["go", 3]}`,
			wantErr: "list attributes must contain only strings",
		},
		{
			name:    "rejects nested lists",
			payload: `{"skills": [["go"]]}`,
			wantErr: "list attributes must contain only strings",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attributes map[string]AttributeValue
			err := json.Unmarshal([]byte(tt.payload), &attributes)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAttributeValue_MarshalJSON(t *testing.T) {
	t.Run("marshals a nil list as an empty array", func(t *testing.T) {
		data, err := json.Marshal(AttributeValue{Kind: AttributeKindList})
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("fails on an unset kind", func(t *testing.T) {
		_, err := json.Marshal(AttributeValue{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported attribute kind")
	})
}
