package question

// Record is the raw storage shape of a question document. Every field is
// optional; which ones are meaningful depends on Type. Decode converts a
// Record into the typed [Question] variant at the storage boundary, and
// Encode converts a Question back for persistence.
//
// Children may contain empty-string holes (the backend writes nulls for
// unassigned slots); Decode filters them.
type Record struct {
	ID          string        `json:"_id,omitempty" bson:"_id,omitempty"`
	Type        string        `json:"type" bson:"type"`
	MainText    *Text         `json:"mainText,omitempty" bson:"mainText,omitempty"`
	Placeholder *Text         `json:"placeholder,omitempty" bson:"placeholder,omitempty"`
	Options     []RouteOption `json:"options,omitempty" bson:"options,omitempty"`
	Fields      []InputField  `json:"fields,omitempty" bson:"fields,omitempty"`
	Paragraphs  []Text        `json:"paragraphs,omitempty" bson:"paragraphs,omitempty"`
	Points      []Text        `json:"points,omitempty" bson:"points,omitempty"`
	Urgency     string        `json:"urgency,omitempty" bson:"urgency,omitempty"`
	Action      *Action       `json:"action,omitempty" bson:"action,omitempty"`
	Children    []string      `json:"children,omitempty" bson:"children,omitempty"`
}

// Decode converts a raw record into its typed variant.
func Decode(r Record) Question {
	q := Question{
		ID:       r.ID,
		Type:     Type(r.Type),
		Children: filterIDs(r.Children),
	}
	if r.MainText != nil {
		q.MainText = *r.MainText
	}

	switch q.Type {
	case TypeBoolean:
		q.Detail = BooleanDetail{Options: r.Options}
	case TypeSelection:
		q.Detail = SelectionDetail{Options: choiceOptions(r.Options), Action: r.Action}
	case TypeInputFields:
		q.Detail = InputFieldsDetail{Fields: r.Fields, Action: r.Action}
	case TypeResult:
		q.Detail = ResultDetail{Paragraphs: r.Paragraphs, Points: r.Points, Urgency: r.Urgency}
	case TypeNewComplaint:
		d := ComplaintDetail{Action: r.Action}
		if r.Placeholder != nil {
			d.Placeholder = *r.Placeholder
		}
		q.Detail = d
	case TypeTeethModel, TypeDiseaseSelection, TypeMap:
		q.Detail = PickerDetail{Action: r.Action}
	}
	return q
}

// DecodeAll converts a record list, preserving input order.
func DecodeAll(records []Record) []Question {
	out := make([]Question, len(records))
	for i, r := range records {
		out[i] = Decode(r)
	}
	return out
}

// Encode converts a typed question back into its storage shape.
func Encode(q Question) Record {
	r := Record{
		ID:       q.ID,
		Type:     string(q.Type),
		Children: q.Children,
	}
	if !q.MainText.IsEmpty() {
		t := q.MainText
		r.MainText = &t
	}

	switch d := q.Detail.(type) {
	case BooleanDetail:
		r.Options = d.Options
	case SelectionDetail:
		r.Options = routeOptions(d.Options)
		r.Action = d.Action
	case InputFieldsDetail:
		r.Fields = d.Fields
		r.Action = d.Action
	case ResultDetail:
		r.Paragraphs = d.Paragraphs
		r.Points = d.Points
		r.Urgency = d.Urgency
	case ComplaintDetail:
		if !d.Placeholder.IsEmpty() {
			p := d.Placeholder
			r.Placeholder = &p
		}
		r.Action = d.Action
	case PickerDetail:
		r.Action = d.Action
	}
	return r
}

// NextIDs returns the outgoing route targets declared by the question's
// detail (boolean option nextIds, or the single action nextId). This is
// what the backend collapses into Children; it is exposed so the editor
// can reason about routing without re-reading raw records.
func NextIDs(q Question) []string {
	switch d := q.Detail.(type) {
	case BooleanDetail:
		var ids []string
		for _, opt := range d.Options {
			if opt.NextID != "" {
				ids = append(ids, opt.NextID)
			}
		}
		return ids
	case SelectionDetail:
		return actionNext(d.Action)
	case InputFieldsDetail:
		return actionNext(d.Action)
	case ComplaintDetail:
		return actionNext(d.Action)
	case PickerDetail:
		return actionNext(d.Action)
	}
	return nil
}

func actionNext(a *Action) []string {
	if a == nil || a.NextID == "" {
		return nil
	}
	return []string{a.NextID}
}

func filterIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func choiceOptions(opts []RouteOption) []ChoiceOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]ChoiceOption, len(opts))
	for i, o := range opts {
		out[i] = ChoiceOption{Name: o.Name, Selected: o.Selected}
	}
	return out
}

func routeOptions(opts []ChoiceOption) []RouteOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]RouteOption, len(opts))
	for i, o := range opts {
		out[i] = RouteOption{Name: o.Name, Selected: o.Selected}
	}
	return out
}
