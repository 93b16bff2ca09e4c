package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/studio-b12/gowebdav"
)

// WebDAV stores artifacts in a Nextcloud folder via the WebDAV endpoint.
type WebDAV struct {
	client *gowebdav.Client
	dir    string
}

// NewWebDAV creates a store for the given directory on a Nextcloud server.
// The directory must already exist; ErrTargetNotFound is returned otherwise.
func NewWebDAV(serverURL, username, password, dir string) (*WebDAV, error) {
	base := strings.TrimRight(serverURL, "/") + "/remote.php/webdav"
	client := gowebdav.NewClient(base, username, password)

	info, err := client.Stat(dir)
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, dir)
		}
		return nil, fmt.Errorf("error checking Nextcloud directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrTargetNotFound, dir)
	}

	return &WebDAV{client: client, dir: dir}, nil
}

func (w *WebDAV) Write(name string, data []byte) error {
	remote := path.Join(w.dir, name)
	if err := w.client.Write(remote, data, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", remote, err)
	}
	return nil
}
