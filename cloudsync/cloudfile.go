// Package cloudsync proposes titles for PDFs kept in Dropbox, optionally
// stores renamed copies next to them and catalogs the result in Notion.
package cloudsync

type CloudFile struct {
	FileID   string
	Title    string
	URL      string
	Tags     []string
	Provider string
}

func (c *CloudFile) GetKey() string {
	return "cloudfile-" + c.Provider + "-" + c.FileID
}

const providerDropbox = "dropbox"

// TagRetitled marks catalog entries created by a sync.
var TagRetitled = "retitled"
