package query

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/domain/filter"
	"github.com/quillhq/quill/internal/domain/schema"
)

func translatorFixture(t *testing.T) filter.Translator {
	t.Helper()
	s, err := schema.New(map[string]schema.PropertyType{
		"Status":   schema.TypeSelect,
		"Priority": schema.TypeNumber,
	})
	if err != nil {
		t.Fatal(err)
	}
	return filter.NewTranslator(s)
}

func TestNewSort(t *testing.T) {
	s, err := NewSort("Priority", Descending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Property() != "Priority" || s.Direction() != Descending {
		t.Errorf("unexpected sort: %+v", s)
	}

	if _, err := NewSort("", Ascending); err == nil {
		t.Error("expected error for empty property")
	}
	if _, err := NewSort("Priority", Direction("sideways")); !errors.Is(err, domain.ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}
}

func TestSort_MarshalJSON(t *testing.T) {
	s, err := NewSort("Due", Ascending)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"direction":"ascending","property":"Due"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestSetLimit(t *testing.T) {
	var spec Spec
	if err := spec.SetLimit(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Limit() != 10 {
		t.Errorf("expected limit 10, got %d", spec.Limit())
	}

	for _, n := range []int{0, -1} {
		if err := spec.SetLimit(n); !errors.Is(err, domain.ErrInvalidLimit) {
			t.Errorf("SetLimit(%d): expected ErrInvalidLimit, got %v", n, err)
		}
	}
	// A failed SetLimit leaves the previous value alone.
	if spec.Limit() != 10 {
		t.Errorf("limit changed by invalid call, got %d", spec.Limit())
	}
}

func TestBuild_Empty(t *testing.T) {
	var spec Spec
	body, err := spec.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Filter != nil || body.Sorts != nil {
		t.Errorf("expected empty body, got %+v", body)
	}
}

func TestBuild_SingleFilterStaysBare(t *testing.T) {
	tr := translatorFixture(t)
	n, err := tr.Translate("Status", filter.OpEq, "Done")
	if err != nil {
		t.Fatal(err)
	}

	var spec Spec
	spec.AddFilter(n)

	body, err := spec.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Filter == nil {
		t.Fatal("expected a filter")
	}
	if body.Filter.IsCombinator() {
		t.Error("single filter must not be wrapped in a combinator")
	}
}

func TestBuild_MultipleFiltersCombined(t *testing.T) {
	tr := translatorFixture(t)
	a, err := tr.Translate("Status", filter.OpEq, "Done")
	if err != nil {
		t.Fatal(err)
	}
	b, err := tr.Translate("Priority", filter.OpGte, 5)
	if err != nil {
		t.Fatal(err)
	}

	var spec Spec
	spec.AddFilter(a)
	spec.AddFilter(b)

	body, err := spec.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Filter == nil || !body.Filter.IsCombinator() {
		t.Fatal("expected an AND combinator")
	}

	data, err := json.Marshal(body.Filter)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"and":[` +
		`{"property":"Status","select":{"equals":"Done"}},` +
		`{"property":"Priority","number":{"greater_than_or_equal_to":5}}]}`
	if string(data) != want {
		t.Errorf("wire mismatch:\ngot:  %s\nwant: %s", data, want)
	}
}

func TestBuild_SortOrderPreserved(t *testing.T) {
	first, err := NewSort("Priority", Descending)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewSort("Due", Ascending)
	if err != nil {
		t.Fatal(err)
	}

	var spec Spec
	spec.AddSort(first)
	spec.AddSort(second)

	body, err := spec.Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(body.Sorts) != 2 {
		t.Fatalf("expected 2 sorts, got %d", len(body.Sorts))
	}
	if body.Sorts[0].Property() != "Priority" || body.Sorts[1].Property() != "Due" {
		t.Errorf("sort insertion order lost: %+v", body.Sorts)
	}
}
