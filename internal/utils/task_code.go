package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateTaskCode returns a human readable task code such as TASK-3F9A1C.
func GenerateTaskCode() string {
	return "TASK-" + strings.ToUpper(uuid.NewString()[:6])
}
