package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "title with year", input: "Invoices 2026", want: "invoices-2026"},
		{name: "punctuation", input: "Sales, Quotes & Orders!", want: "sales-quotes-orders"},
		{name: "romanian comma below", input: "Facturi și chitanțe", want: "facturi-si-chitante"},
		{name: "romanian cedilla", input: "Contracte şi ţinte", want: "contracte-si-tinte"},
		{name: "breve and circumflex", input: "Adeverință în română", want: "adeverinta-in-romana"},
		{name: "uppercase diacritics", input: "ȘTIINȚĂ", want: "stiinta"},
		{name: "french accents", input: "Café Résumé", want: "cafe-resume"},
		{name: "non latin stripped", input: "Docs 文件", want: "docs"},
		{name: "surrounding hyphens", input: "--legal--", want: "legal"},
		{name: "mixed separators", input: "a - b \t c", want: "a-b-c"},
		{name: "empty", input: "", want: ""},
		{name: "only symbols", input: "!@#$", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateIdempotent(t *testing.T) {
	first := Generate("Contract de prestări servicii")
	if again := Generate(first); again != first {
		t.Errorf("Generate is not idempotent: %q then %q", first, again)
	}
}
