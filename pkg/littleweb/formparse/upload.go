package formparse

import "github.com/yourusername/littleweb/pkg/littleweb/wire"

// CleanupUploads removes every spool file referenced by req.Uploads. The
// littleweb server calls it when its request handler returns, on both the
// success and error paths, which is before the response is written.
func CleanupUploads(req *wire.Request) {
	for _, u := range req.Uploads {
		removeSpoolFile(u.Path)
	}
}
