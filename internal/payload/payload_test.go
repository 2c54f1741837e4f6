package payload

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referencePayload = `{
	// example payload stored next to template.docx
	"TITLE": "My template title",
	"NUMBER": 2,
	"FLOAT_NUMBER": 3.23,
	"FLOAT_ZERO_NUMBER": 0.0,
	"NESTED_DICT": {
		"NESTED_KEY1": "Nested value",
		"NESTED_KEY2": "Nested value",
		"DEEP_NESTED_KEY": {
			"NUMBER": 24,
			"LIST": [1, 2, 3],
			"LIST_OF_DICTS": [{"KEY1": "value", "KEY2": "value"}],
		},
	},
	"LISTED_VALUE": ["2", "3", "4"],
	"LIST_OF_LISTS": [[1, 2, 3], [4, 5, 6], [7, 8, 9]],
	"LIST_OF_DICTS": [{"KEY": "value"}, {"KEY": "value"}],
	"NONE": null,
}`

func mustDecode(t *testing.T, data string) map[string]any {
	t.Helper()
	m, err := Decode([]byte(data))
	require.NoError(t, err)
	return m
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		want     ValidationResult
	}{
		{
			name: "valid",
			incoming: `{
				"TITLE": "Some title",
				"NUMBER": 242,
				"FLOAT_NUMBER": 4.345,
				"FLOAT_ZERO_NUMBER": 0.0,
				"NESTED_DICT": {
					"NESTED_KEY1": "Some value",
					"NESTED_KEY2": "Nested value",
					"DEEP_NESTED_KEY": {
						"NUMBER": 2424,
						"LIST": [4, 5, 6],
						"LIST_OF_DICTS": [{"KEY1": "value", "KEY2": "value"}]
					}
				},
				"LISTED_VALUE": ["2", "3", "4"],
				"LIST_OF_LISTS": [[1, 2, 3], [4, 5, 6], [7, 8, 9]],
				"LIST_OF_DICTS": [{"KEY": "value"}, {"KEY": "value"}],
				"NONE": null
			}`,
			want: ValidationResult{MissingKeys: []string{}, ExtraKeys: []string{}, TypeMismatches: []string{}},
		},
		{
			name: "top level",
			incoming: `{
				"ANOTHER_TITLE": "Another title",
				"NUMBER": "242",
				"FLOAT_NUMBER": 4.345,
				"FLOAT_ZERO_NUMBER": 0,
				"NESTED_DICT": {
					"NESTED_KEY1": "Some value",
					"NESTED_KEY2": "Nested value",
					"DEEP_NESTED_KEY": {
						"NUMBER": 2424,
						"LIST": [4, 5, 6],
						"LIST_OF_DICTS": [{"KEY1": "value", "KEY2": "value"}]
					}
				},
				"LISTED_VALUE": ["2", "3", "4"],
				"LIST_OF_LISTS": [[1, 2, 3], [4, 5, 6], [7, 8, 9]],
				"LIST_OF_DICTS": [{"KEY": "value"}, {"KEY": "value"}],
				"NONE": null
			}`,
			want: ValidationResult{
				MissingKeys:    []string{"TITLE"},
				ExtraKeys:      []string{"ANOTHER_TITLE"},
				TypeMismatches: []string{"NUMBER (expected int, got str)"},
			},
		},
		{
			name: "nested keys",
			incoming: `{
				"TITLE": "Some title",
				"NUMBER": 242,
				"FLOAT_NUMBER": 4.345,
				"FLOAT_ZERO_NUMBER": 0.0,
				"NESTED_DICT": {
					"NESTED_KEY2": 1111,
					"NESTED_KEY3": "redundant",
					"DEEP_NESTED_KEY": {
						"NUMBER": "2424",
						"REDUNDANT_KEY": "value",
						"LIST": ["4", "5", "6"],
						"LIST_OF_DICTS": [{"KEY1": "value", "KEY3": "value"}]
					}
				},
				"LISTED_VALUE": ["2", "3", "4"],
				"LIST_OF_LISTS": [[1, 2, 3], [4, 5, 6], [7, 8, 9]],
				"LIST_OF_DICTS": [{"KEY": "value"}, {"KEY": "value"}],
				"NONE": null
			}`,
			want: ValidationResult{
				MissingKeys: []string{
					"NESTED_DICT.NESTED_KEY1",
					"NESTED_DICT.DEEP_NESTED_KEY.LIST_OF_DICTS[0].KEY2",
				},
				ExtraKeys: []string{
					"NESTED_DICT.DEEP_NESTED_KEY.LIST_OF_DICTS[0].KEY3",
					"NESTED_DICT.DEEP_NESTED_KEY.REDUNDANT_KEY",
					"NESTED_DICT.NESTED_KEY3",
				},
				TypeMismatches: []string{
					"NESTED_DICT.NESTED_KEY2 (expected str, got int)",
					"NESTED_DICT.DEEP_NESTED_KEY.NUMBER (expected int, got str)",
					"NESTED_DICT.DEEP_NESTED_KEY.LIST[0] (expected int, got str)",
					"NESTED_DICT.DEEP_NESTED_KEY.LIST[1] (expected int, got str)",
					"NESTED_DICT.DEEP_NESTED_KEY.LIST[2] (expected int, got str)",
				},
			},
		},
		{
			name: "listed keys",
			incoming: `{
				"TITLE": "Some title",
				"NUMBER": 242,
				"FLOAT_NUMBER": 4.345,
				"FLOAT_ZERO_NUMBER": 0.0,
				"NESTED_DICT": {
					"NESTED_KEY1": "Some value",
					"NESTED_KEY2": "Nested value",
					"DEEP_NESTED_KEY": {
						"NUMBER": 2424,
						"LIST": [4, 5, 6],
						"LIST_OF_DICTS": [{"KEY1": "value", "KEY2": "value"}]
					}
				},
				"LISTED_VALUE": [2, "3", 4],
				"LIST_OF_LISTS": [[1, null, 3], [4, 5, ["A", "B"]], [{"SOME_KEY": "some_value"}, 8, 9]],
				"LIST_OF_DICTS": [{"ANOTHER_KEY": "value"}, {"KEY": 0, "KEY2": "value2"}],
				"NONE": null
			}`,
			want: ValidationResult{
				MissingKeys: []string{"LIST_OF_DICTS[0].KEY"},
				ExtraKeys:   []string{"LIST_OF_DICTS[0].ANOTHER_KEY", "LIST_OF_DICTS[1].KEY2"},
				TypeMismatches: []string{
					"LISTED_VALUE[0] (expected str, got int)",
					"LISTED_VALUE[2] (expected str, got int)",
					"LIST_OF_LISTS[0][1] (expected int, got NoneType)",
					"LIST_OF_LISTS[1][2] (expected int, got list)",
					"LIST_OF_LISTS[2][0] (expected int, got dict)",
					"LIST_OF_DICTS[1].KEY (expected str, got int)",
				},
			},
		},
	}

	reference := mustDecode(t, referencePayload)
	sortStrings := cmpopts.SortSlices(func(a, b string) bool { return a < b })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(reference, mustDecode(t, tt.incoming))
			if diff := cmp.Diff(tt.want, got, sortStrings); diff != "" {
				t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.want.Valid(), got.Valid())
		})
	}
}

func TestValidate_Example(t *testing.T) {
	reference := mustDecode(t, `{"A": 1, "B": {"C": "x"}}`)
	incoming := mustDecode(t, `{"A": "1", "B": {"C": "x"}, "D": 5}`)

	want := ValidationResult{
		MissingKeys:    []string{},
		ExtraKeys:      []string{"D"},
		TypeMismatches: []string{"A (expected int, got str)"},
	}
	got := Validate(reference, incoming)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, got.Valid())
}

func TestValidate_Numbers(t *testing.T) {
	reference := mustDecode(t, `{"I": 1, "F": 1.5, "B": true}`)

	got := Validate(reference, mustDecode(t, `{"I": 2.5, "F": 3, "B": false}`))
	assert.True(t, got.Valid())

	got = Validate(reference, mustDecode(t, `{"I": true, "F": 1.0, "B": 1}`))
	assert.Equal(t, []string{
		"B (expected bool, got int)",
		"I (expected int, got bool)",
	}, got.TypeMismatches)
}

func TestValidate_EmptyReferenceList(t *testing.T) {
	reference := mustDecode(t, `{"L": []}`)
	got := Validate(reference, mustDecode(t, `{"L": [1, "two", {"three": 3}]}`))
	assert.True(t, got.Valid())
}

func TestValidate_Deterministic(t *testing.T) {
	reference := mustDecode(t, `{"b": 1, "a": 1, "c": {"z": 1, "y": 1}}`)
	incoming := mustDecode(t, `{"e": 1, "d": 1, "c": {"x": 1}}`)

	got := Validate(reference, incoming)
	assert.Equal(t, []string{"a", "b", "c.y", "c.z"}, got.MissingKeys)
	assert.Equal(t, []string{"c.x", "d", "e"}, got.ExtraKeys)
}

func TestDecode(t *testing.T) {
	_, err := Decode([]byte(`[1, 2]`))
	assert.ErrorIs(t, err, ErrNotAnObject)

	_, err = Decode([]byte(`{"a": 1} {"b": 2}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"a": `))
	assert.Error(t, err)

	m, err := Decode([]byte("{\"a\": 1, /* note */ \"b\": 2.0,}\n"))
	require.NoError(t, err)
	assert.Equal(t, "int", TypeName(m["a"]))
	assert.Equal(t, "float", TypeName(m["b"]))
}

func TestTypeName(t *testing.T) {
	tests := map[string]any{
		"NoneType": nil,
		"bool":     true,
		"str":      "s",
		"int":      42,
		"float":    4.2,
		"dict":     map[string]any{},
		"list":     []any{},
	}
	for want, v := range tests {
		assert.Equal(t, want, TypeName(v))
	}
}
