package themesheet

import "testing"

func TestCompileCondFormats(t *testing.T) {
	rules := []CondFormat{
		{Sheet: "s", Range: "B2:B6", When: "value < 0", Style: "danger"},
		{Sheet: "s", Range: "B2:B6", When: "value >= 1000", Style: "success"},
		{Sheet: "s", Range: "B2:B6", When: "value > 0 && value < 10", Style: "warning"},
		{Sheet: "s", Range: "B2:B6", When: "value +", Style: "broken"}, // не компилируется
	}
	out := compileCondFormats(rules)
	if len(out) != 3 {
		t.Fatalf("скомпилировано %d правил, ожидалось 3", len(out))
	}
	if out[0].criteria != "less than" || out[0].operand != "0" {
		t.Errorf("правило 0: %q %q", out[0].criteria, out[0].operand)
	}
	if out[1].criteria != "greater than or equal to" || out[1].operand != "1000" {
		t.Errorf("правило 1: %q %q", out[1].criteria, out[1].operand)
	}
	// Составное выражение компилируется, но в табличный критерий не
	// транслируется.
	if out[2].criteria != "" {
		t.Errorf("правило 2 не должно транслироваться: %q", out[2].criteria)
	}
}

func TestCompileCondFormatsEmpty(t *testing.T) {
	if out := compileCondFormats(nil); out != nil {
		t.Fatal("пустой вход должен дать nil")
	}
}
