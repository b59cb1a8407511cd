package build

import (
	"fmt"
	"os"

	"abb/internal/chapters"
)

func writeMetadata(path string, meta chapters.Metadata) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chapter metadata: %w", err)
	}
	if err := chapters.WriteFFMetadata(file, meta); err != nil {
		_ = file.Close()
		return fmt.Errorf("write chapter metadata: %w", err)
	}
	return file.Close()
}
