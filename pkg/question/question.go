// Package question defines the questionnaire data model.
//
// Raw records arrive from storage (or an export file) as loosely shaped
// documents: every field is optional and only meaningful for some question
// types. This package decodes them exactly once into a tagged variant,
// a [Question] carrying a type-specific [Detail], so that the graph,
// layout, and editor packages never touch optional-field soup.
//
// # Bilingual Text
//
// Every operator-facing string is a [Text] pair. The console only ever
// reads the English side for labels; Dutch is opaque pass-through data.
package question

import (
	"unicode/utf8"
)

// Type tags a question variant. Unknown tags are carried through verbatim
// and rendered with the raw tag as their label.
type Type string

// Known question types.
const (
	TypeBoolean          Type = "boolean"
	TypeSelection        Type = "selection"
	TypeNewComplaint     Type = "newComplain"
	TypeInputFields      Type = "inputFields"
	TypeResult           Type = "result"
	TypeTeethModel       Type = "teethmodel"
	TypeDiseaseSelection Type = "diseaseSelection"
	TypeMap              Type = "map"
)

// FriendlyLabel returns the operator-facing label for a question type.
// Unknown types pass through as their raw tag.
func (t Type) FriendlyLabel() string {
	switch t {
	case TypeBoolean:
		return "Yes/No Question"
	case TypeSelection:
		return "Choice Question"
	case TypeTeethModel:
		return "Tooth Problem"
	case TypeDiseaseSelection:
		return "Disease Selection"
	case TypeNewComplaint:
		return "Complaint"
	case TypeInputFields:
		return "Input Field"
	case TypeMap:
		return "Location Selection"
	case TypeResult:
		return "Result"
	default:
		return string(t)
	}
}

// Text is a bilingual label. EN drives display; Dutch is pass-through.
type Text struct {
	EN    string `json:"en" bson:"en"`
	Dutch string `json:"dutch" bson:"dutch"`
}

// IsEmpty reports whether both sides of the pair are empty.
func (t Text) IsEmpty() bool { return t.EN == "" && t.Dutch == "" }

// RouteOption is one routed answer of a boolean question ("Yes"/"No"),
// pointing at the next question via NextID. An empty NextID means the
// option is not yet connected.
type RouteOption struct {
	Name     Text   `json:"name" bson:"name"`
	NextID   string `json:"nextId,omitempty" bson:"nextId,omitempty"`
	Selected bool   `json:"selected" bson:"selected"`
}

// ChoiceOption is one entry of a selection question.
type ChoiceOption struct {
	Name     Text `json:"name" bson:"name"`
	Selected bool `json:"selected" bson:"selected"`
}

// InputField is one field of an inputFields question. Name is a
// machine-readable key (no spaces); FieldType is the widget kind.
type InputField struct {
	Name        string `json:"name" bson:"name"`
	Placeholder Text   `json:"placeHolder" bson:"placeHolder"`
	FieldType   string `json:"type" bson:"type"`
}

// Action is the single "next" routing of non-branching question types.
type Action struct {
	Name   Text   `json:"name" bson:"name"`
	NextID string `json:"nextId,omitempty" bson:"nextId,omitempty"`
}

// Detail is the type-specific payload of a question. Exactly one concrete
// detail type corresponds to each known [Type]; unknown types carry no
// detail.
type Detail interface {
	isDetail()
}

// BooleanDetail routes via two options, tagged Yes and No.
type BooleanDetail struct {
	Options []RouteOption
}

// SelectionDetail presents a list of choices.
type SelectionDetail struct {
	Options []ChoiceOption
	Action  *Action
}

// InputFieldsDetail collects free-form patient input.
type InputFieldsDetail struct {
	Fields []InputField
	Action *Action
}

// ResultDetail terminates a path with result paragraphs and an urgency.
type ResultDetail struct {
	Paragraphs []Text
	Points     []Text
	Urgency    string
}

// ComplaintDetail prompts for a new complaint with a placeholder.
type ComplaintDetail struct {
	Placeholder Text
	Action      *Action
}

// PickerDetail covers the picker-style types (teethmodel, diseaseSelection,
// map) whose editor form is out of scope but whose routing still matters.
type PickerDetail struct {
	Action *Action
}

func (BooleanDetail) isDetail()     {}
func (SelectionDetail) isDetail()   {}
func (InputFieldsDetail) isDetail() {}
func (ResultDetail) isDetail()      {}
func (ComplaintDetail) isDetail()   {}
func (PickerDetail) isDetail()      {}

// Question is the decoded questionnaire node. Children is the authoritative
// outgoing edge list (holes already filtered); Detail carries the fields
// valid for Type and nothing else.
type Question struct {
	ID       string
	Type     Type
	MainText Text
	Children []string
	Detail   Detail
}

// cardTextLimit is the rune budget for card display text. Longer text is
// cut and suffixed with an ellipsis; the full text stays available for
// tooltips.
const cardTextLimit = 50

// DisplayText returns the full text shown for the question: the first
// result paragraph for result questions, the main text otherwise.
func (q Question) DisplayText() string {
	if q.Type == TypeResult {
		if d, ok := q.Detail.(ResultDetail); ok && len(d.Paragraphs) > 0 {
			return d.Paragraphs[0].EN
		}
		return ""
	}
	return q.MainText.EN
}

// CardText returns DisplayText truncated for card rendering.
func (q Question) CardText() string {
	return Truncate(q.DisplayText(), cardTextLimit)
}

// ConnectionCount returns the number of outgoing routes.
func (q Question) ConnectionCount() int { return len(q.Children) }

// Truncate cuts s to at most limit runes, appending "..." when cut.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
