package cmds

import "testing"

func TestFormatTraffic(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{5368709120, "5.00 GB"},
	}

	for _, tt := range tests {
		if got := formatTraffic(tt.bytes); got != tt.want {
			t.Errorf("formatTraffic(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
