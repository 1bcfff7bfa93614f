package helm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		input    []Values
		expected Values
	}{
		{
			name: "merge two maps",
			input: []Values{
				{"key1": "value1", "key2": "value2"},
				{"key2": "override", "key3": "value3"},
			},
			expected: Values{"key1": "value1", "key2": "override", "key3": "value3"},
		},
		{
			name:     "merge empty maps",
			input:    []Values{{}, {}},
			expected: Values{},
		},
		{
			name: "nested maps are replaced",
			input: []Values{
				{"image": map[string]any{"repository": "a", "tag": "1"}},
				{"image": map[string]any{"tag": "2"}},
			},
			expected: Values{"image": map[string]any{"tag": "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Merge(tt.input...)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDeepMerge(t *testing.T) {
	t.Parallel()

	base := Values{
		"replicas": 1,
		"image":    Values{"repository": "jetbrains/teamcity-server", "tag": "2022.04"},
		"service":  map[string]any{"type": "LoadBalancer", "port": 8111},
	}
	override := Values{
		"image":   map[string]any{"tag": "2023.05"},
		"service": Values{"type": "ClusterIP"},
		"extra":   map[string]any{"a": 1},
	}

	result := DeepMerge(base, override)

	assert.Equal(t, 1, result["replicas"])
	assert.Equal(t, map[string]any{"repository": "jetbrains/teamcity-server", "tag": "2023.05"}, result["image"])
	assert.Equal(t, map[string]any{"type": "ClusterIP", "port": 8111}, result["service"])
	assert.Equal(t, map[string]any{"a": 1}, result["extra"])

	// Inputs are not modified.
	assert.Equal(t, "2022.04", base["image"].(Values)["tag"])
}

func TestDeepMerge_ScalarReplacesMap(t *testing.T) {
	t.Parallel()

	result := DeepMerge(Values{"persistence": Values{"enabled": true}}, Values{"persistence": false})
	assert.Equal(t, false, result["persistence"])
}

func TestAsMap_NormalizesNestedValues(t *testing.T) {
	t.Parallel()

	v := Values{
		"a": Values{"b": Values{"c": 1}},
		"list": []any{
			Values{"name": "x"},
		},
		"typed": []Values{{"name": "y"}},
	}

	m := v.AsMap()
	inner, ok := m["a"].(map[string]any)
	require.True(t, ok)
	_, ok = inner["b"].(map[string]any)
	assert.True(t, ok)

	list := m["list"].([]any)
	_, ok = list[0].(map[string]any)
	assert.True(t, ok)

	typed := m["typed"].([]any)
	assert.Equal(t, map[string]any{"name": "y"}, typed[0])
}

func TestToYAML(t *testing.T) {
	values := Values{
		"replicas": 2,
		"image": Values{
			"repository": "bitnami/nginx",
			"tag":        "1.21.6-debian-10-r105",
		},
	}

	yaml, err := values.ToYAML()
	require.NoError(t, err)
	assert.Equal(t, "image:\n  repository: bitnami/nginx\n  tag: 1.21.6-debian-10-r105\nreplicas: 2\n", string(yaml))
}

func TestFromYAML(t *testing.T) {
	yamlData := []byte(`
replicas: 2
service:
  type: LoadBalancer
`)

	values, err := FromYAML(yamlData)
	require.NoError(t, err)
	assert.Equal(t, 2, values["replicas"])
	assert.Equal(t, map[string]any{"type": "LoadBalancer"}, values["service"])

	_, err = FromYAML([]byte("a: [b"))
	assert.Error(t, err)
}
