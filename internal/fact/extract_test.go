package fact

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const smiCSV = `Tesla T4, 16384 MiB, 512 MiB, [N/A]
NVIDIA A100-SXM4-40GB, 40960 MiB, 1024 MiB, 39936 MiB
`

func TestExtract_Table(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		rule Rule
		want []string
	}{
		{
			name: "regex first match wins",
			raw:  "Driver Version: 535.104.05    CUDA Version: 12.2\nDriver Version: 1.0",
			rule: Regex(`Driver Version:\s*([0-9.]+)`),
			want: []string{"535.104.05"},
		},
		{
			name: "regex last",
			raw:  "GPU 0: A\nGPU 1: B",
			rule: Regex(`GPU \d+: (\S+)`).Last(),
			want: []string{"B"},
		},
		{
			name: "regex all",
			raw:  "GPU 0: A\nGPU 1: B",
			rule: Regex(`GPU \d+: (\S+)`).All(),
			want: []string{"A", "B"},
		},
		{
			name: "regex without group yields whole match",
			raw:  "release 12.2, V12.2.140",
			rule: Regex(`V[0-9.]+`),
			want: []string{"V12.2.140"},
		},
		{
			name: "column with compact unit",
			raw:  smiCSV,
			rule: Column(",", 1).Compact().All(),
			want: []string{"16384MiB", "40960MiB"},
		},
		{
			name: "column placeholder dropped",
			raw:  smiCSV,
			rule: Column(",", 3).Compact().All(),
			want: []string{"39936MiB"},
		},
		{
			name: "column whitespace split",
			raw:  "MemTotal:       32768000 kB\nMemFree: 100 kB",
			rule: Column("", 1).Where(`^MemTotal:`),
			want: []string{"32768000"},
		},
		{
			name: "line all",
			raw:  "\n  a  \n\nb\n",
			rule: Line().All(),
			want: []string{"a", "b"},
		},
		{
			name: "line where",
			raw:  "Name\nNVIDIA GeForce RTX 3080\n",
			rule: Line().Where(`^(?i)nvidia`),
			want: []string{"NVIDIA GeForce RTX 3080"},
		},
		{
			name: "json path",
			raw:  `{"cuda": {"name": "CUDA SDK", "version": "12.2.2"}}`,
			rule: JSONKey("cuda.version"),
			want: []string{"12.2.2"},
		},
		{
			name: "json each over object values",
			raw:  `{"card0": {"Card series": "Navi 31"}, "card1": {"Card series": "Navi 21"}, "system": {"Driver version": "6.2.4"}}`,
			rule: JSONKey("").Each("Card series").All(),
			want: []string{"Navi 31", "Navi 21"},
		},
		{
			name: "json each over array",
			raw:  `[{"Name": "AMD Radeon"}, {"Name": "Intel UHD"}]`,
			rule: JSONKey("").Each("Name").All(),
			want: []string{"AMD Radeon", "Intel UHD"},
		},
		{
			name: "json each on single object",
			raw:  `{"Name": "AMD Radeon", "DriverVersion": "31.0"}`,
			rule: JSONKey("").Each("Name").All(),
			want: []string{"AMD Radeon"},
		},
		{
			name: "json array path",
			raw:  `{"SPDisplaysDataType": [{"sppci_model": "Apple M2"}]}`,
			rule: JSONKey("SPDisplaysDataType.#.sppci_model").All(),
			want: []string{"Apple M2"},
		},
		{
			name: "json object keys",
			raw:  `{"card0": {"Card series": "Navi 31"}, "card1": {"Card series": "Navi 21"}}`,
			rule: JSONKey("").Keys().All(),
			want: []string{"card0", "card1"},
		},
		{
			name: "then transform",
			raw:  "17163091968",
			rule: Line().Then(Scale(1<<20, "MiB")),
			want: []string{"16368MiB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract("x", tt.raw, tt.rule)
			if !f.Present() {
				t.Fatalf("expected fact present, miss=%s", f.Miss())
			}
			if diff := cmp.Diff(tt.want, f.Values()); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_Misses(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		rule Rule
	}{
		{"empty input", "", Line()},
		{"whitespace input", "  \n\t", Line()},
		{"no match", "nothing here", Regex(`Driver Version:\s*(\S+)`)},
		{"missing column", "Tesla T4, 16384 MiB", Column(",", 3)},
		{"placeholder", "[Not Supported]", Line()},
		{"numeric rejects text", "unlimited", Line().Numeric()},
		{"invalid json", "{not json", JSONKey("a")},
		{"missing json key", `{"a": 1}`, JSONKey("b")},
		{"transform drops", "abc", Line().Then(Scale(1024, "KiB"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract("x", tt.raw, tt.rule)
			if f.Present() {
				t.Fatalf("expected absent fact, got %q", f.Value())
			}
			if f.Miss() != ParseMiss {
				t.Errorf("expected ParseMiss, got %s", f.Miss())
			}
		})
	}
}

func TestSplitNumber(t *testing.T) {
	tests := []struct {
		in   string
		n    int64
		unit string
		ok   bool
	}{
		{"16384MiB", 16384, "MiB", true},
		{"512 MiB", 512, "MiB", true},
		{"8192", 8192, "", true},
		{"-3 C", -3, "C", true},
		{"N/A", 0, "", false},
		{"1.5GiB", 0, "", false},
		{"8,192MiB", 0, "", false},
		{"50%", 50, "%", true},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		n, unit, ok := SplitNumber(tt.in)
		if ok != tt.ok || n != tt.n || unit != tt.unit {
			t.Errorf("SplitNumber(%q) = %d, %q, %v; expected %d, %q, %v", tt.in, n, unit, ok, tt.n, tt.unit, tt.ok)
		}
	}
}
