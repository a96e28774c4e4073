// FILE: lixenwraith/fragment/io.go
package fragment

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the field values of inst to a TOML file atomically.
// The file can be passed back as a command's --config input.
func (s *Schema) Save(path string, inst any) error {
	var buf bytes.Buffer
	if err := s.Dump(&buf, inst); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes(), 0644)
}

// writeFileAtomic writes data to a temporary file beside path and renames it into place
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("cannot save %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("cannot save %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("cannot save %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("cannot save %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("cannot save %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cannot save %s: %w", path, err)
	}
	return nil
}
