package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReference builds a prefixed, human-quotable reference for ledger rows
// and orders, e.g. "DEP-20250114-9F2C41D8".
func NewReference(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", strings.ToUpper(prefix), time.Now().UTC().Format("20060102"), id)
}
