package snapshotfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fknsrs.biz/p/ytsnap/internal/ytscrape"
)

// Write saves a snapshot as an indented JSON document under dir,
// named for the channel and the scrape time. The database stays the
// source of truth; these files are an export that survives the next
// scrape overwriting the rows.
func Write(dir string, snapshot *ytscrape.ChannelSnapshot, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("snapshotfile.Write: could not create directory: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("%s_%s.json", snapshot.ChannelID, now.UTC().Format("20060102T150405Z")))

	d, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("snapshotfile.Write: could not encode snapshot: %w", err)
	}

	if err := os.WriteFile(name, d, 0644); err != nil {
		return "", fmt.Errorf("snapshotfile.Write: could not write file: %w", err)
	}

	return name, nil
}
