package extract

import "testing"

func TestDetectLayout(t *testing.T) {
	if got := DetectLayout(SplitLines(deliveryTemplate)); got != LayoutTemplate {
		t.Errorf("Expected template, got %s", got)
	}
	if got := DetectLayout(SplitLines("[주문내역]\nKimchi(1)")); got != LayoutTemplate {
		t.Errorf("Expected bracketed marker detected, got %s", got)
	}
	if got := DetectLayout(SplitLines(looseOrder)); got != LayoutLoose {
		t.Errorf("Expected loose, got %s", got)
	}
	if got := DetectLayout(nil); got != LayoutLoose {
		t.Errorf("Expected loose for no lines, got %s", got)
	}
}

func TestClassify_Template(t *testing.T) {
	lines := SplitLines(deliveryTemplate)
	tags, claimed := Classify(lines, LayoutTemplate, NewClaimedSet())

	expect := map[int]Section{
		0:  SectionHeader,   // preamble
		1:  SectionHeader,   // marker
		2:  SectionCustomer, // details under the marker
		6:  SectionCustomer,
		10: SectionHeader, // 메뉴
		11: SectionMenu,
		12: SectionHeader, // 결제정보
		15: SectionPayment,
		16: SectionHeader, // footer
	}
	for i, want := range expect {
		if tags[i] != want {
			t.Errorf("Line %d %q: expected %s, got %s", i, lines[i].Text, want, tags[i])
		}
	}

	owners := map[int]string{0: rulePreamble, 1: ruleMarker, 10: ruleSection, 12: ruleSection, 16: ruleFooter}
	for i, want := range owners {
		if got, _ := claimed.Owner(i); got != want {
			t.Errorf("Line %d: expected owner %s, got %q", i, want, got)
		}
	}
	if claimed.Len() != len(owners) {
		t.Errorf("Expected only header lines claimed, got %v", claimed.Indices())
	}
}

func TestClassify_FooterClaimsRest(t *testing.T) {
	lines := SplitLines("Kimchi(1)\n본 메일은 발신전용입니다\nSoup(2)\n-----")
	tags, claimed := Classify(lines, LayoutLoose, NewClaimedSet())

	if tags[0] != SectionNone || claimed.Has(0) {
		t.Errorf("Expected body line untouched, got %s", tags[0])
	}
	for i := 1; i < len(lines); i++ {
		if owner, _ := claimed.Owner(i); owner != ruleFooter {
			t.Errorf("Line %d: expected footer claim, got %q", i, owner)
		}
	}
}

func TestClassify_NoiseAndLooseTitles(t *testing.T) {
	lines := SplitLines("=====\n자세히 보기\n메뉴\nKimchi(1)")
	tags, claimed := Classify(lines, LayoutLoose, NewClaimedSet())

	for i := 0; i < 3; i++ {
		if !claimed.Has(i) || tags[i] != SectionHeader {
			t.Errorf("Line %d %q: expected claimed header", i, lines[i].Text)
		}
	}
	if tags[3] != SectionNone {
		t.Errorf("Expected loose layout to keep no section state, got %s", tags[3])
	}
}

func TestClassify_DoesNotModifyInput(t *testing.T) {
	lines := SplitLines(deliveryTemplate)
	in := NewClaimedSet()
	_, out := Classify(lines, LayoutTemplate, in)

	if in.Len() != 0 {
		t.Errorf("Expected input set untouched, got %d claims", in.Len())
	}
	if out.Len() == 0 {
		t.Error("Expected claims in returned set")
	}
}
