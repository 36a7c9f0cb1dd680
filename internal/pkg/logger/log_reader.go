package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// LogEntry is one JSON line of the log file as the admin panel sees it.
type LogEntry struct {
	Id        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Module    string                 `json:"module,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// LogQuery filters a page of entries. Empty Level or Module match everything.
type LogQuery struct {
	Level  string
	Module string
	Limit  int
	Offset int
}

func (q LogQuery) match(e *LogEntry) bool {
	if q.Level != "" && !strings.EqualFold(e.Level, q.Level) {
		return false
	}
	return q.Module == "" || strings.EqualFold(e.Module, q.Module)
}

var ErrLogNotFound = errors.New("log not found")

const maxLogLine = 1 << 20

// scan calls fn for every decodable line of the active log file. Rotated
// backups are not read. A missing file yields nothing.
func (l *ZapLogger) scan(fn func(e LogEntry) bool) error {
	if l.filePath == "" {
		return nil
	}
	f, err := os.Open(l.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLogLine)
	for sc.Scan() {
		var e LogEntry
		if json.Unmarshal(sc.Bytes(), &e) != nil || e.Id == "" {
			continue
		}
		if !fn(e) {
			break
		}
	}
	return sc.Err()
}

// GetLogs returns matching entries newest first.
func (l *ZapLogger) GetLogs(q LogQuery) ([]LogEntry, error) {
	var matched []LogEntry
	err := l.scan(func(e LogEntry) bool {
		if q.match(&e) {
			matched = append(matched, e)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	page := []LogEntry{}
	for i := len(matched) - 1 - q.Offset; i >= 0; i-- {
		if q.Limit > 0 && len(page) == q.Limit {
			break
		}
		page = append(page, matched[i])
	}
	return page, nil
}

func (l *ZapLogger) GetLogById(id string) (*LogEntry, error) {
	var found *LogEntry
	err := l.scan(func(e LogEntry) bool {
		if e.Id == id {
			found = &e
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrLogNotFound
	}
	return found, nil
}
