package store

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dentflow/dentflow/pkg/question"
)

func TestListOptions_Normalized(t *testing.T) {
	tests := []struct {
		name string
		in   ListOptions
		want ListOptions
	}{
		{"zero values", ListOptions{}, ListOptions{Page: 1, Limit: defaultLimit}},
		{"negative page", ListOptions{Page: -3, Limit: 20}, ListOptions{Page: 1, Limit: 20}},
		{"limit capped", ListOptions{Page: 2, Limit: 5000}, ListOptions{Page: 2, Limit: maxLimit}},
		{"passthrough", ListOptions{Page: 4, Limit: 25, Search: "de Vries"}, ListOptions{Page: 4, Limit: 25, Search: "de Vries"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalized(); got != tt.want {
				t.Errorf("normalized() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestListOptions_Skip(t *testing.T) {
	opts := ListOptions{Page: 3, Limit: 5}.normalized()
	if got := opts.skip(); got != 10 {
		t.Errorf("skip() = %d, want 10", got)
	}
}

func TestSearchFilter(t *testing.T) {
	if got := searchFilter("", "name"); len(got) != 0 {
		t.Errorf("empty search produced filter %v", got)
	}

	got := searchFilter("vries", "name", "email")
	want := bson.M{"$or": []bson.M{
		{"name": bson.M{"$regex": "vries", "$options": "i"}},
		{"email": bson.M{"$regex": "vries", "$options": "i"}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("searchFilter() = %v, want %v", got, want)
	}
}

func TestRepointParent_BooleanOption(t *testing.T) {
	parent := question.Record{
		ID:   "parent",
		Type: string(question.TypeBoolean),
		Options: []question.RouteOption{
			{Name: question.Text{EN: "No"}, NextID: "keep"},
			{Name: question.Text{EN: "Yes"}, NextID: "old-child"},
		},
		Children: []string{"keep", "old-child"},
	}

	if !repointParent(&parent, "old-child", "inserted") {
		t.Fatal("repointParent reported no change")
	}
	if parent.Options[1].NextID != "inserted" {
		t.Errorf("Yes option routes to %q, want inserted question", parent.Options[1].NextID)
	}
	if parent.Options[0].NextID != "keep" {
		t.Errorf("unrelated option was rewritten to %q", parent.Options[0].NextID)
	}
	want := []string{"keep", "inserted"}
	if !reflect.DeepEqual(parent.Children, want) {
		t.Errorf("Children = %v, want %v", parent.Children, want)
	}
}

func TestRepointParent_Action(t *testing.T) {
	parent := question.Record{
		ID:       "parent",
		Type:     string(question.TypeSelection),
		Action:   &question.Action{Name: question.Text{EN: "Next"}, NextID: "old-child"},
		Children: []string{"old-child"},
	}

	if !repointParent(&parent, "old-child", "inserted") {
		t.Fatal("repointParent reported no change")
	}
	if parent.Action.NextID != "inserted" {
		t.Errorf("Action routes to %q, want inserted question", parent.Action.NextID)
	}
	if !reflect.DeepEqual(parent.Children, []string{"inserted"}) {
		t.Errorf("Children = %v", parent.Children)
	}
}

func TestRepointParent_NoMatch(t *testing.T) {
	parent := question.Record{
		ID:     "parent",
		Type:   string(question.TypeSelection),
		Action: &question.Action{NextID: "someone-else"},
	}
	if repointParent(&parent, "old-child", "inserted") {
		t.Error("repointParent changed a parent that never routed to the child")
	}
	if parent.Action.NextID != "someone-else" {
		t.Errorf("Action.NextID = %q, want untouched", parent.Action.NextID)
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleAdmin) || !ValidRole(RoleOperator) {
		t.Error("known roles rejected")
	}
	if ValidRole("Superuser") {
		t.Error("unknown role accepted")
	}
}
