package upstream

import "testing"

func TestFacetSetEncodePreservesOrder(t *testing.T) {
	facets := NewFacetSet().
		Add("categories", "forge").
		Add("versions", "1.20.1").
		Add("project_type", "mod")

	got, err := facets.Encode()
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	want := `[["categories:forge"],["versions:1.20.1"],["project_type:mod"]]`
	if got != want {
		t.Fatalf("facets 编码不符:\n got %s\nwant %s", got, want)
	}
}

func TestFacetSetEmpty(t *testing.T) {
	var nilSet *FacetSet
	if !nilSet.Empty() {
		t.Fatalf("nil 集合应为空")
	}
	if !NewFacetSet().Empty() {
		t.Fatalf("新集合应为空")
	}
	got, err := NewFacetSet().Encode()
	if err != nil || got != "" {
		t.Fatalf("空集合应编码为空字符串, got %q err=%v", got, err)
	}
}
