package generator

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

// WriteFixtures serializes the fixtures into user.json, accounts.json and transactions.json under dir.
func WriteFixtures(f Fixtures, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := []struct {
		name string
		data any
	}{
		{"user.json", f.User},
		{"accounts.json", f.Accounts},
		{"transactions.json", f.Transactions},
	}
	for _, file := range files {
		if err := writeJSON(filepath.Join(dir, file.name), file.data); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
