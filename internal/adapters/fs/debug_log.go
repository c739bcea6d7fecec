package fs

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Debug log watermarks. A log above the high watermark is cut down to its
// most recent KeepDebugLog bytes at startup.
const (
	MaxDebugLog  int64 = 11 << 20
	KeepDebugLog int64 = 10 << 20
)

// ShrinkLog trims the file at path to roughly its last keep bytes when it is
// larger than high. The cut is moved forward to the next line start. It
// reports whether the file was shrunk.
func ShrinkLog(path string, high, keep int64) (bool, error) {
	if keep <= 0 || keep >= high {
		return false, fmt.Errorf("invalid watermarks: keep %d, high %d", keep, high)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.Size() <= high {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	tail := make([]byte, keep)
	_, err = f.ReadAt(tail, info.Size()-keep)
	f.Close()
	if err != nil && err != io.EOF {
		return false, err
	}

	if i := bytes.IndexByte(tail, '\n'); i >= 0 {
		tail = tail[i+1:]
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, tail, 0o600); err != nil {
		return false, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return false, err
	}
	return true, nil
}
