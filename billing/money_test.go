package billing

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain integer", input: "80", want: 8000},
		{name: "pt-br decimal", input: "80,50", want: 8050},
		{name: "pt-br thousands", input: "1.234,56", want: 123456},
		{name: "pt-br thousands no decimal", input: "1.234", want: 123400},
		{name: "currency prefix", input: "R$ 80,00", want: 8000},
		{name: "dot decimal", input: "1234.56", want: 123456},
		{name: "single decimal digit", input: "12,5", want: 1250},
		{name: "millions", input: "1.234.567", want: 123456700},
		{name: "negative", input: "-10,00", want: -1000},
		{name: "empty", input: "", wantErr: true},
		{name: "spaces only", input: "   ", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "two commas", input: "1,2,3", wantErr: true},
		{name: "too many decimals", input: "1,234", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "integer", input: "10", want: 10},
		{name: "with symbol", input: "10%", want: 10},
		{name: "comma decimal", input: "7,5", want: 7.5},
		{name: "dot decimal", input: "12.5%", want: 12.5},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "dez", wantErr: true},
		{name: "nan", input: "nan", wantErr: true},
		{name: "infinity", input: "inf", wantErr: true},
		{name: "positive infinity", input: "+Inf", wantErr: true},
		{name: "negative infinity", input: "-inf%", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePercent(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePercent(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParsePercent(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "R$ 0,00"},
		{8000, "R$ 80,00"},
		{8050, "R$ 80,50"},
		{123456, "R$ 1.234,56"},
		{123456700, "R$ 1.234.567,00"},
		{-1000, "-R$ 10,00"},
	}

	for _, tt := range tests {
		if got := FormatBRL(tt.cents); got != tt.want {
			t.Errorf("FormatBRL(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 8000, 123456, 999999999} {
		parsed, err := ParseAmount(FormatBRL(cents))
		if err != nil {
			t.Fatalf("round trip of %d failed: %v", cents, err)
		}
		if parsed != cents {
			t.Errorf("round trip of %d = %d", cents, parsed)
		}
	}
}
