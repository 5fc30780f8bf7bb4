package question

import (
	"reflect"
	"strings"
	"testing"
)

func TestTypeFriendlyLabel(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeBoolean, "Yes/No Question"},
		{TypeSelection, "Choice Question"},
		{TypeTeethModel, "Tooth Problem"},
		{TypeDiseaseSelection, "Disease Selection"},
		{TypeNewComplaint, "Complaint"},
		{TypeInputFields, "Input Field"},
		{TypeMap, "Location Selection"},
		{TypeResult, "Result"},
		{Type("somethingElse"), "somethingElse"},
	}
	for _, tt := range tests {
		if got := tt.typ.FriendlyLabel(); got != tt.want {
			t.Errorf("FriendlyLabel(%q) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestDecode_FiltersChildHoles(t *testing.T) {
	q := Decode(Record{
		ID:       "a",
		Type:     "boolean",
		Children: []string{"b", "", "c", ""},
	})

	if !reflect.DeepEqual(q.Children, []string{"b", "c"}) {
		t.Errorf("Children = %v, want [b c]", q.Children)
	}
	if q.ConnectionCount() != 2 {
		t.Errorf("ConnectionCount() = %d, want 2", q.ConnectionCount())
	}
}

func TestDecode_Variants(t *testing.T) {
	en := func(s string) *Text { return &Text{EN: s} }

	tests := []struct {
		name string
		rec  Record
		want any // reflect.TypeOf the expected detail, nil for none
	}{
		{"boolean", Record{Type: "boolean", Options: []RouteOption{{Name: Text{EN: "Yes"}}}}, BooleanDetail{}},
		{"selection", Record{Type: "selection"}, SelectionDetail{}},
		{"inputFields", Record{Type: "inputFields"}, InputFieldsDetail{}},
		{"result", Record{Type: "result", Urgency: "low"}, ResultDetail{}},
		{"newComplain", Record{Type: "newComplain", Placeholder: en("hm")}, ComplaintDetail{}},
		{"teethmodel", Record{Type: "teethmodel"}, PickerDetail{}},
		{"diseaseSelection", Record{Type: "diseaseSelection"}, PickerDetail{}},
		{"map", Record{Type: "map"}, PickerDetail{}},
		{"unknown", Record{Type: "mystery"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Decode(tt.rec)
			if tt.want == nil {
				if q.Detail != nil {
					t.Fatalf("Detail = %T, want nil", q.Detail)
				}
				return
			}
			if reflect.TypeOf(q.Detail) != reflect.TypeOf(tt.want) {
				t.Errorf("Detail = %T, want %T", q.Detail, tt.want)
			}
		})
	}
}

func TestDisplayText(t *testing.T) {
	boolean := Decode(Record{
		Type:     "boolean",
		MainText: &Text{EN: "Does it hurt?", Dutch: "Doet het pijn?"},
	})
	if got := boolean.DisplayText(); got != "Does it hurt?" {
		t.Errorf("DisplayText() = %q, want main text", got)
	}

	result := Decode(Record{
		Type:       "result",
		MainText:   &Text{EN: "ignored"},
		Paragraphs: []Text{{EN: "See a dentist soon."}, {EN: "second"}},
	})
	if got := result.DisplayText(); got != "See a dentist soon." {
		t.Errorf("DisplayText() = %q, want first paragraph", got)
	}

	empty := Decode(Record{Type: "result"})
	if got := empty.DisplayText(); got != "" {
		t.Errorf("DisplayText() = %q, want empty for result without paragraphs", got)
	}
}

func TestCardText_Truncation(t *testing.T) {
	long := strings.Repeat("x", 60)
	q := Decode(Record{Type: "boolean", MainText: &Text{EN: long}})

	got := q.CardText()
	if got != strings.Repeat("x", 50)+"..." {
		t.Errorf("CardText() = %q, want 50 runes plus ellipsis", got)
	}

	short := Decode(Record{Type: "boolean", MainText: &Text{EN: "short"}})
	if short.CardText() != "short" {
		t.Errorf("CardText() = %q, want unmodified short text", short.CardText())
	}
}

func TestEncode_RoundTripsRouting(t *testing.T) {
	rec := Record{
		ID:   "q1",
		Type: "boolean",
		MainText: &Text{EN: "Bleeding gums?", Dutch: "Bloedend tandvlees?"},
		Options: []RouteOption{
			{Name: Text{EN: "No", Dutch: "Nee"}, NextID: "q2"},
			{Name: Text{EN: "Yes", Dutch: "Ja"}, NextID: "q3"},
		},
		Children: []string{"q2", "q3"},
	}

	got := Encode(Decode(rec))
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("Encode(Decode(rec)) = %+v, want %+v", got, rec)
	}
}

func TestNextIDs(t *testing.T) {
	boolean := Decode(Record{Type: "boolean", Options: []RouteOption{
		{Name: Text{EN: "No"}, NextID: "a"},
		{Name: Text{EN: "Yes"}},
	}})
	if got := NextIDs(boolean); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("NextIDs(boolean) = %v, want [a]", got)
	}

	picker := Decode(Record{Type: "map", Action: &Action{NextID: "z"}})
	if got := NextIDs(picker); !reflect.DeepEqual(got, []string{"z"}) {
		t.Errorf("NextIDs(picker) = %v, want [z]", got)
	}

	none := Decode(Record{Type: "selection"})
	if got := NextIDs(none); got != nil {
		t.Errorf("NextIDs(selection without action) = %v, want nil", got)
	}
}
