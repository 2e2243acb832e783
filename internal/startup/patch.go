package startup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/wgdisplay-installer/internal/logger"
)

const (
	// Header precedes the appended block.
	Header = "# WG Display"

	// fileMode is used when the startup file does not exist yet.
	fileMode os.FileMode = 0o644
)

// errNoLines is returned when there is nothing to append.
var errNoLines = errors.New("no startup lines to append")

// IsPatched reports whether every line is present verbatim in content.
func IsPatched(content string, lines []string) bool {
	present := make(map[string]struct{})
	for _, line := range strings.Split(content, "\n") {
		present[line] = struct{}{}
	}

	for _, line := range lines {
		if _, ok := present[line]; !ok {
			return false
		}
	}

	return true
}

// Patch appends the header and lines to the startup file at path unless all
// lines are already there. It returns whether the file was written.
// The check and the append are not atomic with respect to other writers.
func Patch(ctx context.Context, path string, lines []string) (bool, error) {
	if len(lines) == 0 {
		return false, errNoLines
	}

	path = filepath.Clean(path)

	contents, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("read startup file: %w", err)
	}

	if IsPatched(string(contents), lines) {
		logger.InfoKV(ctx, "Already patched startup file", "path", path)
		return false, nil
	}

	var block strings.Builder

	if len(contents) > 0 && contents[len(contents)-1] != '\n' {
		block.WriteString("\n")
	}

	block.WriteString(Header)
	block.WriteString("\n")

	for _, line := range lines {
		block.WriteString(line)
		block.WriteString("\n")
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return false, fmt.Errorf("open startup file: %w", err)
	}

	if _, err = file.WriteString(block.String()); err != nil {
		_ = file.Close()

		return false, fmt.Errorf("append to startup file: %w", err)
	}

	if err = file.Close(); err != nil {
		return false, fmt.Errorf("close startup file: %w", err)
	}

	logger.InfoKV(ctx, "Patched startup file", "path", path)

	return true, nil
}
