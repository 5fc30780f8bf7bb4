package editor

import (
	"fmt"
	"strings"

	"github.com/dentflow/dentflow/pkg/question"
)

// Validate checks the draft against the rules of its question type and
// returns every violation. An empty slice means the draft can be saved.
func (s *Session) Validate() []string {
	var violations []string
	add := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	d := s.draft
	typ := question.Type(d.Type)

	if d.Type == "" {
		add("Question type is required")
	}

	if typ != question.TypeResult {
		if d.MainText == nil || strings.TrimSpace(d.MainText.EN) == "" {
			add("Question (English) is required")
		}
		if d.MainText == nil || strings.TrimSpace(d.MainText.Dutch) == "" {
			add("Question (Dutch) is required")
		}
	}

	switch typ {
	case question.TypeNewComplaint:
		if d.Placeholder == nil || strings.TrimSpace(d.Placeholder.EN) == "" {
			add("Placeholder (English) is required")
		}
		if d.Placeholder == nil || strings.TrimSpace(d.Placeholder.Dutch) == "" {
			add("Placeholder (Dutch) is required")
		}

	case question.TypeResult:
		if len(d.Paragraphs) == 0 {
			add("At least one paragraph is required")
		}
		for i, para := range d.Paragraphs {
			if strings.TrimSpace(para.EN) == "" {
				add("Paragraph %d (English) is required", i+1)
			}
			if strings.TrimSpace(para.Dutch) == "" {
				add("Paragraph %d (Dutch) is required", i+1)
			}
		}
		if strings.TrimSpace(d.Urgency) == "" {
			add("Urgency is required")
		}

	case question.TypeSelection:
		if len(d.Options) == 0 {
			add("At least one selection option is required")
		}
		for i, opt := range d.Options {
			if strings.TrimSpace(opt.Name.EN) == "" {
				add("Option %d name (English) is required", i+1)
			}
			if strings.TrimSpace(opt.Name.Dutch) == "" {
				add("Option %d name (Dutch) is required", i+1)
			}
		}

	case question.TypeInputFields:
		if len(d.Fields) == 0 {
			add("At least one input field is required")
		}
		for i, field := range d.Fields {
			if strings.TrimSpace(field.Name) == "" {
				add("Field %d name is required", i+1)
			}
			if strings.Contains(field.Name, " ") {
				add("Field %d name cannot contain spaces", i+1)
			}
			if strings.TrimSpace(field.Placeholder.EN) == "" {
				add("Field %d placeholder (English) is required", i+1)
			}
			if strings.TrimSpace(field.Placeholder.Dutch) == "" {
				add("Field %d placeholder (Dutch) is required", i+1)
			}
			if field.FieldType == "" {
				add("Field %d type is required", i+1)
			}
		}

	case question.TypeBoolean:
		if len(d.Options) == 0 {
			add("Boolean options are required")
			break
		}
		if !optionConnected(d.Options, "Yes") {
			add("Yes option must have a connected question")
		}
		if !optionConnected(d.Options, "No") {
			add("No option must have a connected question")
		}
	}

	return violations
}

func optionConnected(opts []question.RouteOption, name string) bool {
	for _, opt := range opts {
		if opt.Name.EN == name {
			return opt.NextID != ""
		}
	}
	return false
}
