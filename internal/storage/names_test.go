package storage

import (
	"errors"
	"testing"

	"github.com/starford/kneeview/internal/apperr"
)

func TestPageName(t *testing.T) {
	ok := map[string]string{
		"01-Brevity-1.png":              "01-Brevity-1.png",
		"FA-18C_hornet/CheckList-2.png": "FA-18C_hornet/CheckList-2.png",
		`FA-18C_hornet\CheckList-2.png`: "FA-18C_hornet/CheckList-2.png",
		"F-16C_50/01-Map_Night-1.PNG":   "F-16C_50/01-Map_Night-1.PNG",
	}
	for in, want := range ok {
		got, err := PageName(in)
		if err != nil {
			t.Errorf("PageName(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("PageName(%q) = %q, want %q", in, got, want)
		}
	}

	bad := []string{
		"",
		"/etc/passwd",
		"../escape.png",
		"a/../../b.png",
		"a/b/c.png",
		"dir/",
		".kneeview-tmp-1",
		"C:/x.png",
		"a/./b.png",
	}
	for _, in := range bad {
		if _, err := PageName(in); !errors.Is(err, apperr.ErrInvalidName) {
			t.Errorf("PageName(%q) err = %v, want ErrInvalidName", in, err)
		}
	}
}
