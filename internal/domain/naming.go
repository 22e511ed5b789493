package domain

import (
	"fmt"
	"path/filepath"
)

// TaskLogPath returns the path to the task log file.
func TaskLogPath(dataDir string, taskID int64) string {
	return filepath.Join(dataDir, "logs", fmt.Sprintf("task-%d.log", taskID))
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "taskhub.log")
}

// TaskRef formats a task ID for display.
// Format: #<id>
func TaskRef(taskID int64) string {
	return fmt.Sprintf("#%d", taskID)
}
