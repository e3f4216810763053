package store

import (
	"bufio"
	"os"
	"strings"
)

// ReadEmailList loads the monitored addresses, one per line, trimmed,
// blanks and repeats dropped, order preserved. The order matters to the
// engine only for pacing (no delay after the last address).
func ReadEmailList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := make(map[string]struct{}, 64)
	out := make([]string, 0, 64)

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out, sc.Err()
}
