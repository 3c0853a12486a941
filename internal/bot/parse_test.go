package bot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSearchArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        string
		wantKeyword string
		wantDays    int
		wantErr     bool
	}{
		{name: "keyword only", args: "NBA", wantKeyword: "NBA", wantDays: 7},
		{name: "keyword with days", args: "NBA 3", wantKeyword: "NBA", wantDays: 3},
		{name: "multi-word keyword", args: "台股 財報 14", wantKeyword: "台股 財報", wantDays: 14},
		{name: "numeric-looking keyword keeps default days", args: "iphone", wantKeyword: "iphone", wantDays: 7},
		{name: "empty", args: "", wantErr: true},
		{name: "zero days", args: "NBA 0", wantErr: true},
		{name: "negative days", args: "NBA -2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyword, days, err := ParseSearchArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantKeyword, keyword); diff != "" {
				t.Errorf("keyword (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantDays, days); diff != "" {
				t.Errorf("days (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseIDArg(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    int64
		wantErr bool
	}{
		{name: "plain id", args: "12", want: 12},
		{name: "id with trailing words", args: "12 extra", want: 12},
		{name: "padded", args: "  7  ", want: 7},
		{name: "empty", args: "", wantErr: true},
		{name: "not a number", args: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDArg(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("id (-want +got):\n%s", diff)
			}
		})
	}
}
