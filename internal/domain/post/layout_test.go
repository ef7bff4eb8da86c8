package post

import "testing"

func TestParseLayoutSingleRow(t *testing.T) {
	kb := ParseLayout("A+example.com|B+webapp://x")
	if len(kb) != 1 {
		t.Fatalf("expected 1 row, got %d", len(kb))
	}
	if len(kb[0]) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(kb[0]))
	}
	if kb[0][0].Label != "A" || kb[0][0].URL != "https://example.com" {
		t.Errorf("unexpected first button: %+v", kb[0][0])
	}
	if kb[0][1].Label != "B" || kb[0][1].URL != "x" || !kb[0][1].Internal {
		t.Errorf("unexpected second button: %+v", kb[0][1])
	}
}

func TestParseLayoutDropsMalformed(t *testing.T) {
	if kb := ParseLayout("A+b+c"); len(kb) != 0 {
		t.Fatalf("expected no rows, got %+v", kb)
	}
	kb := ParseLayout("nolink|Ok+http://ok.io")
	if len(kb) != 1 || len(kb[0]) != 1 {
		t.Fatalf("expected one surviving button, got %+v", kb)
	}
	if kb[0][0].URL != "http://ok.io" {
		t.Errorf("expected http url kept, got %q", kb[0][0].URL)
	}
}

func TestParseLayoutRowsAndWhitespace(t *testing.T) {
	kb := ParseLayout("\n  Site + site.com \n\nA+a.com | B+b.com\n")
	if len(kb) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(kb), kb)
	}
	if kb[0][0].Label != "Site" || kb[0][0].URL != "https://site.com" {
		t.Errorf("unexpected trimmed button: %+v", kb[0][0])
	}
	if len(kb[1]) != 2 {
		t.Errorf("expected 2 buttons on second row, got %d", len(kb[1]))
	}
}

func TestParseLayoutEmpty(t *testing.T) {
	if kb := ParseLayout("   "); kb != nil {
		t.Errorf("expected nil keyboard, got %+v", kb)
	}
}
