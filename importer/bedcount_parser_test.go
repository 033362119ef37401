package importer

import (
	"testing"

	"kijunserver/dataset"
)

func TestParseBedCount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want dataset.BedCount
	}{
		{
			name: "labeled single category",
			raw:  "一般　　22",
			want: dataset.BedCount{dataset.Labeled("一般"): 22},
		},
		{
			name: "multiple categories fullwidth slash",
			raw:  "一般　　1178／精神　　40",
			want: dataset.BedCount{
				dataset.Labeled("一般"): 1178,
				dataset.Labeled("精神"): 40,
			},
		},
		{
			name: "multiple categories halfwidth slash",
			raw:  "一般 120/療養 40",
			want: dataset.BedCount{
				dataset.Labeled("一般"): 120,
				dataset.Labeled("療養"): 40,
			},
		},
		{
			name: "digits only becomes unlabeled",
			raw:  "22",
			want: dataset.BedCount{dataset.Unlabeled: 22},
		},
		{
			name: "fullwidth digits folded",
			raw:  "一般　１２０",
			want: dataset.BedCount{dataset.Labeled("一般"): 120},
		},
		{
			name: "label without count dropped",
			raw:  "一般",
			want: dataset.BedCount{},
		},
		{
			name: "empty input",
			raw:  "",
			want: dataset.BedCount{},
		},
		{
			name: "whitespace only",
			raw:  "　　",
			want: dataset.BedCount{},
		},
		{
			name: "duplicate words in label deduplicated",
			raw:  "一般 一般　30",
			want: dataset.BedCount{dataset.Labeled("一般"): 30},
		},
		{
			name: "multiword label keeps first occurrence order",
			raw:  "一般 病床 一般　15",
			want: dataset.BedCount{dataset.Labeled("一般 病床"): 15},
		},
		{
			name: "mix of labeled and label-only segments",
			raw:  "一般　100／療養",
			want: dataset.BedCount{dataset.Labeled("一般"): 100},
		},
		{
			name: "empty segment between delimiters ignored",
			raw:  "一般　50／／精神　10",
			want: dataset.BedCount{
				dataset.Labeled("一般"): 50,
				dataset.Labeled("精神"): 10,
			},
		},
		{
			name: "later digits-only segment overwrites earlier",
			raw:  "30／45",
			want: dataset.BedCount{dataset.Unlabeled: 45},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBedCount(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseBedCount(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for cat, n := range tt.want {
				if got[cat] != n {
					t.Errorf("ParseBedCount(%q)[%v] = %d, want %d", tt.raw, cat, got[cat], n)
				}
			}
		})
	}
}

func TestNormalizeBedLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"一般", "一般"},
		{"　一般　", "一般"},
		{"一般 一般", "一般"},
		{"一般　病床", "一般 病床"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeBedLabel(tt.raw); got != tt.want {
			t.Errorf("normalizeBedLabel(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
