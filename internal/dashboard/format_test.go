package dashboard

import (
	"strings"
	"testing"
	"time"
)

func TestFormatInt(t *testing.T) {
	cases := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
	}
	for n, want := range cases {
		if got := FormatInt(n); got != want {
			t.Errorf("FormatInt(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "-"},
		{45 * time.Second, "45s"},
		{4*time.Minute + 32*time.Second, "4m32s"},
		{time.Hour + 4*time.Minute, "1h04m"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.d); got != c.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestProgressBarClamps(t *testing.T) {
	if got := ProgressBar(150, 10); !strings.HasSuffix(got, "100%") {
		t.Errorf("ProgressBar(150) = %q, want suffix 100%%", got)
	}
	if got := ProgressBar(-5, 10); !strings.HasSuffix(got, "  0%") {
		t.Errorf("ProgressBar(-5) = %q, want suffix 0%%", got)
	}
	if got := ProgressBar(50, 10); !strings.Contains(got, "=====>") {
		t.Errorf("ProgressBar(50) = %q, want half-filled bar", got)
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(2_500_000); got != "$2.5M" {
		t.Errorf("FormatMoney = %q, want $2.5M", got)
	}
	if got := FormatMoney(12.5); got != "$12.50" {
		t.Errorf("FormatMoney = %q, want $12.50", got)
	}
}
