package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// quarantine writes a failed batch's CSV payload to outDir so it can be
// inspected and replayed later; failure to do so never aborts the table.
func quarantine(outDir, table string, batchSize int, causeErr error, payload []byte) error {
	if outDir == "" {
		return nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	digestInput := fmt.Sprintf("%v|%s|%d", causeErr, table, batchSize)
	sum := sha256.Sum256([]byte(digestInput))
	shortHash := hex.EncodeToString(sum[:])[:10]

	name := fmt.Sprintf("badbatch_%s_%s.csv", table, shortHash)
	path := filepath.Join(outDir, name)
	return os.WriteFile(path, payload, 0o644)
}
