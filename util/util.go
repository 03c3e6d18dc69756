package util

import (
	"path/filepath"
	"strings"

	"golang.org/x/exp/constraints"
)

func Abs[A constraints.Signed](n A) A {
	if n < 0 {
		return -n
	}
	return n
}

// GCD is always non-negative. GCD(0, 0) is 0.
func GCD[A constraints.Integer](a A, b A) A {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM is always non-negative. LCM with a zero argument is 0.
func LCM[A constraints.Integer](a A, b A) A {
	if a == 0 || b == 0 {
		return 0
	}
	res := a / GCD(a, b) * b
	if res < 0 {
		res = -res
	}
	return res
}

// WithSuffix turns "dir/song.mscz" + "-variations" into "dir/song-variations.mscz".
// A non-empty ext replaces the original extension.
func WithSuffix(path string, suffix string, ext string) string {
	orig := filepath.Ext(path)
	if ext == "" {
		ext = orig
	}
	return strings.TrimSuffix(path, orig) + suffix + ext
}

// SanitizeFileName makes a part name usable inside a file name.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "", "?", "", "\"", "", "<", "", ">", "", "|", "", "\n", "-", "\r", "")
	name = replacer.Replace(name)
	if name == "" {
		return "part"
	}
	return name
}
