package storage

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const collectionResponse = `<?xml version="1.0"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/remote.php/webdav/eBons/</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>eBons</d:displayname>
        <d:resourcetype><d:collection/></d:resourcetype>
        <d:getlastmodified>Fri, 01 Mar 2024 10:15:30 GMT</d:getlastmodified>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

// fakeNextcloud answers the WebDAV subset the store uses: PROPFIND on the
// eBons folder and PUT below it.
type fakeNextcloud struct {
	mu   sync.Mutex
	puts map[string][]byte
}

func (f *fakeNextcloud) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "PROPFIND":
		if strings.TrimSuffix(r.URL.Path, "/") != "/remote.php/webdav/eBons" {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(http.StatusMultiStatus)
		io.WriteString(w, collectionResponse)
	case "PUT":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.puts[r.URL.Path] = body
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	default:
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

func TestNewWebDAV_MissingDirectory(t *testing.T) {
	srv := httptest.NewServer(&fakeNextcloud{puts: map[string][]byte{}})
	defer srv.Close()

	_, err := NewWebDAV(srv.URL, "user", "secret", "missing")
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("Expected ErrTargetNotFound for missing directory, got %v", err)
	}
}

func TestWebDAV_Write(t *testing.T) {
	nc := &fakeNextcloud{puts: map[string][]byte{}}
	srv := httptest.NewServer(nc)
	defer srv.Close()

	// A trailing slash on the server URL must not double up in the endpoint.
	store, err := NewWebDAV(srv.URL+"/", "user", "secret", "eBons")
	if err != nil {
		t.Fatalf("NewWebDAV returned error: %v", err)
	}

	data := []byte("%PDF-1.4 fake ebon document")
	if err := store.Write("2024-03-01T10-15-30.000Z.pdf", data); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	nc.mu.Lock()
	defer nc.mu.Unlock()
	got, ok := nc.puts["/remote.php/webdav/eBons/2024-03-01T10-15-30.000Z.pdf"]
	if !ok {
		t.Fatalf("Expected PUT below the eBons folder, got %v", putPaths(nc.puts))
	}
	if string(got) != string(data) {
		t.Errorf("Uploaded bytes = %q, want original document", got)
	}
}

func putPaths(m map[string][]byte) []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	return paths
}
