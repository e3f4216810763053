package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Pusher91/breachwatch/internal/domain"
)

// DedupLog is the durable append-only record of memberships already
// alerted on, one human-readable line per entry:
//
//	<email> - <breachName> (<DD/MM/YYYY>)
//
// The full log is loaded into memory once at open so Contains is cheap
// for the rest of the run. Appends go through a single O_APPEND write
// per entry, so a crash leaves at most one truncated trailing line,
// which the next open ignores.
type DedupLog struct {
	mu   sync.Mutex
	f    *os.File
	seen map[string]struct{}
}

func OpenDedupLog(path string) (*DedupLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dedup log: %w", err)
	}

	l := &DedupLog{f: f, seen: make(map[string]struct{}, 256)}
	if err := l.loadLocked(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return l, nil
}

func (l *DedupLog) loadLocked() error {
	r := bufio.NewReader(l.f)
	for {
		line, err := r.ReadString('\n')
		if errors.Is(err, io.EOF) {
			// A fragment with no trailing newline is an interrupted
			// append from a previous run; the entry was never reported.
			return nil
		}
		if err != nil {
			return fmt.Errorf("read dedup log: %w: %w", domain.ErrStorageCorrupt, err)
		}

		line = strings.TrimRight(line, "\n")
		if line == "" {
			continue
		}
		email, name, ok := parseMembershipLine(line)
		if !ok {
			// Treating garbage as empty could double-alert; refuse to run.
			return fmt.Errorf("dedup log line %q: %w", line, domain.ErrStorageCorrupt)
		}
		l.seen[dedupKey(email, name)] = struct{}{}
	}
}

func (l *DedupLog) Contains(email, breachName string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[dedupKey(email, breachName)]
	return ok
}

func (l *DedupLog) Append(m domain.Membership) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := dedupKey(m.Email, m.BreachName)
	if _, ok := l.seen[k]; ok {
		return nil
	}
	if _, err := l.f.WriteString(m.Line() + "\n"); err != nil {
		return fmt.Errorf("append dedup log: %w", err)
	}
	l.seen[k] = struct{}{}
	return nil
}

func (l *DedupLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

func (l *DedupLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

func dedupKey(email, breachName string) string {
	return email + "\x00" + breachName
}

// parseMembershipLine inverts domain.Membership.Line. The email never
// contains " - " and the date suffix is fixed-width, so splitting on the
// first separator and the last "(" is unambiguous.
func parseMembershipLine(line string) (email, breachName string, ok bool) {
	sep := strings.Index(line, " - ")
	if sep <= 0 {
		return "", "", false
	}
	email = line[:sep]
	rest := line[sep+3:]

	open := strings.LastIndex(rest, " (")
	if open <= 0 || !strings.HasSuffix(rest, ")") {
		return "", "", false
	}
	return email, rest[:open], true
}
