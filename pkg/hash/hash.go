// Package hash computes content digests used to detect file changes.
package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/spf13/afero"

	"github.com/syncwell/mirror/pkg/errors"
)

// HashFile returns the hex-encoded sha256 digest of the file at the given
// path. Files with identical bytes always hash to the same digest, so two
// files are considered equal iff their digests match.
// The whole file is read into memory, so this isn't suitable for files larger
// than available memory.
func HashFile(fs afero.Fs, path string) (string, error) {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", errors.WithContext(err, "read")
	}

	digest := sha256.Sum256(contents)
	return hex.EncodeToString(digest[:]), nil
}
