package web

import (
	"bytes"
	"compress/gzip"
	"embed"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
)

//go:embed static
var staticFiles embed.FS

// compressedAsset is a text asset gzipped once at startup.
type compressedAsset struct {
	contentType string
	body        []byte
}

// staticHandler serves the embedded page. Text assets go out pre-gzipped to
// clients that accept it; everything else falls through to the file server.
func staticHandler() http.Handler {
	root, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	assets, err := compressAssets(root)
	if err != nil {
		panic(err)
	}
	files := http.FileServer(http.FS(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}

		asset, ok := assets[name]
		if !ok || !acceptsGzip(r) {
			files.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Content-Type", asset.contentType)
		h.Set("Content-Encoding", "gzip")
		h.Set("Content-Length", strconv.Itoa(len(asset.body)))
		h.Add("Vary", "Accept-Encoding")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(asset.body)
		}
	})
}

func compressAssets(root fs.FS) (map[string]compressedAsset, error) {
	assets := make(map[string]compressedAsset)
	err := fs.WalkDir(root, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !compressible(name) {
			return err
		}
		raw, err := fs.ReadFile(root, name)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return err
		}
		if _, err := zw.Write(raw); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}

		ctype := mime.TypeByExtension(path.Ext(name))
		if ctype == "" {
			ctype = http.DetectContentType(raw)
		}
		assets[name] = compressedAsset{contentType: ctype, body: buf.Bytes()}
		return nil
	})
	return assets, err
}

func acceptsGzip(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(coding, "gzip") {
			return true
		}
	}
	return false
}

func compressible(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".css", ".js", ".json", ".svg", ".txt":
		return true
	}
	return false
}
