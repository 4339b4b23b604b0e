package shared

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func TestFormatRating(t *testing.T) {
	tc := []struct {
		name  string
		avg   float64
		count int
		want  string
	}{
		{name: "unrated", avg: 0, count: 0, want: "unrated"},
		{name: "single rating", avg: 4, count: 1, want: "4.00 (1 rating)"},
		{name: "hundreds", avg: 3.456, count: 999, want: "3.46 (999 ratings)"},
		{name: "thousands", avg: 4.21, count: 1203, want: "4.21 (1,203 ratings)"},
		{name: "millions", avg: 2.5, count: 1234567, want: "2.50 (1,234,567 ratings)"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRating(tt.avg, tt.count); got != tt.want {
				t.Errorf("FormatRating() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseIDs(t *testing.T) {
	t.Run("valid list with blanks", func(t *testing.T) {
		ids, err := ParseIDs("1, 2,,30 ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 30 {
			t.Errorf("unexpected ids: %v", ids)
		}
	})

	t.Run("non numeric", func(t *testing.T) {
		_, err := ParseIDs("1,abc")
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("negative", func(t *testing.T) {
		_, err := ParseIDs("-4")
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseIDs(" , ")
		if !errors.Is(err, ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to buffer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		WithLogger(logger, "component", "test").Info("hello")
		if !bytes.Contains(buf.Bytes(), []byte("component=test")) {
			t.Errorf("expected key-value pair in output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "moviex.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("written")
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestBrowser(t *testing.T) {
	t.Run("IMDbURL", func(t *testing.T) {
		cases := map[string]string{
			"0114709":   "https://www.imdb.com/title/tt0114709/",
			"tt0114709": "https://www.imdb.com/title/tt0114709/",
			"  ":        "",
		}
		for in, want := range cases {
			if got := IMDbURL(in); got != want {
				t.Errorf("IMDbURL(%q) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		orig := getRuntime
		getRuntime = func() string { return "plan9" }
		defer func() { getRuntime = orig }()

		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("command per platform", func(t *testing.T) {
		orig := getRuntime
		defer func() { getRuntime = orig }()

		for rt, bin := range map[string]string{"darwin": "open", "linux": "xdg-open", "windows": "cmd"} {
			getRuntime = func() string { return rt }
			cmd, err := browserCommand("https://example.com")
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", rt, err)
			}
			if cmd.Args[0] != bin {
				t.Errorf("expected %s for %s, got %s", bin, rt, cmd.Args[0])
			}
		}
	})
}
