package utils

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
)

type LogEntry struct {
	Timestamp string `json:"time"`
	Level     string `json:"level"`
	Msg       string `json:"msg"`
	Stage     string `json:"STAGE"`
	Sample    string `json:"SAMPLE"`
	Status    string `json:"STATUS"`
	Cmd       string `json:"CMD"`
}

// ParseLogFile reads the JSON run log back into entries. A missing file is
// a fresh run, not an error.
func ParseLogFile(logFilePath string) []LogEntry {
	file, err := os.Open(logFilePath)
	if err != nil {
		return nil
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// StageHasCompleted reports whether a COMPLETED record exists for the given
// stage and sample. Pass "ALL" for stages that are not per-sample.
func StageHasCompleted(entries []LogEntry, stage string, sample string) bool {
	for _, entry := range entries {
		if entry.Level == "INFO" && entry.Stage == stage && entry.Sample == sample && entry.Status == "COMPLETED" {
			return true
		}
	}
	return false
}
