package middleware

import (
	"net/http"
	"os"
	"path/filepath"
)

const defaultAvatarSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200"><rect width="200" height="200" fill="#f0f0f0"/><circle cx="100" cy="78" r="34" fill="#999"/><path d="M40 170c0-33 27-52 60-52s60 19 60 52" fill="#999"/></svg>`

// StaticFileServer serves uploaded profile images, falling back to a default
// avatar when the file is missing (covers the 'default.jpg' sentinel too).
func StaticFileServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "public, max-age=2592000")
			http.ServeFile(w, r, path)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write([]byte(defaultAvatarSVG))
	})
}
