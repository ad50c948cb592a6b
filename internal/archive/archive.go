// Package archive keeps a copy of every uploaded statement file.
package archive

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store saves raw statement files and returns a URI identifying the stored copy.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
}

// ObjectKey builds "<account>/<yyyy>/<mm>/<dd>/<uuid>-<file name>".
func ObjectKey(accountID, fileName string, now time.Time) string {
	name := strings.ReplaceAll(filepath.Base(fileName), " ", "_")
	return path.Join(accountID, now.UTC().Format("2006/01/02"), fmt.Sprintf("%s-%s", uuid.NewString(), name))
}
