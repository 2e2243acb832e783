package release

import (
	"bytes"
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/wgdisplay-installer/internal/logger"

	// Ensure SHA256 is linked for checksum verification.
	_ "crypto/sha256"
)

const (
	// ExecutableMode is applied to the installed binary.
	ExecutableMode os.FileMode = 0o755

	// ChecksumFunction verifies configured artifact digests.
	ChecksumFunction crypto.Hash = crypto.SHA256
)

// ErrDownloadFailed marks a release that could not be fetched or applied.
var ErrDownloadFailed = errors.New("failed to download release")

// Install atomically replaces target with data, marking it executable.
// A target created here is removed again if the swap fails.
func Install(ctx context.Context, data []byte, target string, checksum []byte) error {
	target = filepath.Clean(target)

	if err := os.MkdirAll(filepath.Dir(target), ExecutableMode); err != nil {
		return fmt.Errorf("create install directory: %w", err)
	}

	created, err := ensureTarget(target)
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Applying release", "path", target, "verified", checksum != nil)

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: ExecutableMode,
		Checksum:   checksum,
		Hash:       ChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		if rollbackErr := goupdate.RollbackError(err); rollbackErr != nil {
			return fmt.Errorf("apply release: %w (rollback failed: %w)", err, rollbackErr)
		}

		if created {
			_ = os.Remove(target)
		}

		return fmt.Errorf("apply release: %w", err)
	}

	return nil
}

// ensureTarget creates an empty target so go-update has a file to swap out.
func ensureTarget(target string) (bool, error) {
	_, err := os.Stat(target)
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", target, err)
	}

	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY, ExecutableMode)
	if err != nil {
		return false, fmt.Errorf("create %s: %w", target, err)
	}

	if err = file.Close(); err != nil {
		return true, fmt.Errorf("close %s: %w", target, err)
	}

	return true, nil
}
