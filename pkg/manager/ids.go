package manager

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
)

// NewSessionID generates a session id following the spec grammar
// reasoning-<base36(epochMs)>-<8 random hex chars>.
func NewSessionID(nowMs int64) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("reasoning-%s-%s", strconv.FormatInt(nowMs, 36), hex.EncodeToString(buf))
}
