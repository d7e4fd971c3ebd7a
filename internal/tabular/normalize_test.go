package tabular

import "testing"

func TestNormalizeSexTotalAndIdempotent(t *testing.T) {
	cases := map[string]string{
		"M":       "M",
		"male":    "M",
		" MALE ":  "M",
		"F":       "F",
		"Female":  "F",
		"X":       "",
		"":        "",
		"unknown": "",
	}
	for input, want := range cases {
		got := NormalizeSex(input)
		if got != want {
			t.Fatalf("NormalizeSex(%q) = %q, want %q", input, got, want)
		}
		if again := NormalizeSex(got); again != got {
			t.Fatalf("NormalizeSex not idempotent for %q: %q -> %q", input, got, again)
		}
	}
}

func TestSexCode(t *testing.T) {
	if got := SexCode("Male"); got != "0" {
		t.Fatalf("expected code 0 for male, got %q", got)
	}
	if got := SexCode("F"); got != "1" {
		t.Fatalf("expected code 1 for female, got %q", got)
	}
	if got := SexCode("n/a"); got != "" {
		t.Fatalf("expected empty code for unknown, got %q", got)
	}
}

func TestNormalizeDiagnosis(t *testing.T) {
	cases := map[string]string{
		"CN":         "0",
		"control":    "0",
		"NORMAL":     "0",
		"MCI":        "0.5",
		"EMCI":       "0.5",
		"lmci":       "0.5",
		"AD":         "1",
		"Dementia":   "1",
		"ALZHEIMERS": "1",
		"SMC":        "",
		"":           "",
	}
	for input, want := range cases {
		if got := NormalizeDiagnosis(input); got != want {
			t.Fatalf("NormalizeDiagnosis(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeAgeYears(t *testing.T) {
	if got := NormalizeAgeYears("73.4"); got != "0.734" {
		t.Fatalf("expected 0.734, got %q", got)
	}
	if got := NormalizeAgeYears(" 80 "); got != "0.800" {
		t.Fatalf("expected 0.800, got %q", got)
	}
	if got := NormalizeAgeYears("n/a"); got != "" {
		t.Fatalf("expected empty for non-numeric, got %q", got)
	}
}

func TestNormalizeAgeFraction(t *testing.T) {
	if got := NormalizeAgeFraction("0.7"); got != "0.700" {
		t.Fatalf("expected 0.700, got %q", got)
	}
	if got := NormalizeAgeFraction(""); got != "" {
		t.Fatalf("expected empty for missing value, got %q", got)
	}
}

func TestStripImageUID(t *testing.T) {
	if got := StripImageUID("I123456"); got != "123456" {
		t.Fatalf("expected vendor prefix stripped, got %q", got)
	}
	if got := StripImageUID("i42"); got != "42" {
		t.Fatalf("expected lowercase prefix stripped, got %q", got)
	}
	if got := StripImageUID("123456"); got != "123456" {
		t.Fatalf("expected bare id unchanged, got %q", got)
	}
	if got := StripImageUID(""); got != "" {
		t.Fatalf("expected empty unchanged, got %q", got)
	}
}
