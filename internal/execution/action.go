package execution

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

func NewActionID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "loop_unknown"
	}
	return fmt.Sprintf("loop_%s", hex.EncodeToString(b))
}
