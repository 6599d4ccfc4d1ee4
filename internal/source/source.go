// Package source loads program text for the front end.  It resolves the
// path into the directory and file name carried through diagnostics, reads
// from stdin when asked, and transparently decompresses XZ sources.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

// StdinName is the file name diagnostics use for programs read from stdin.
const StdinName = "<stdin>"

// File is a loaded program.
type File struct {
	Path string // path as given on the command line
	Dir  string // absolute directory of the file ("" for stdin)
	Name string // base file name (StdinName for stdin)
	Data []byte // program text, decompressed
}

// Reader returns a fresh reader over the program text.
func (f *File) Reader() *bytes.Reader {
	return bytes.NewReader(f.Data)
}

// Load reads the program at path.  "-" reads stdin.  XZ-compressed files
// are detected by magic bytes and decompressed.
func Load(path string) (*File, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("cannot read stdin: %w", err)
		}
		return &File{Path: path, Name: StdinName, Data: data}, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve source path %s: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot read source file %s: %w", path, err)
	}

	if isXZ(data) {
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("cannot decompress source file %s: %w", path, err)
		}
		data, err = io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("cannot decompress source file %s: %w", path, err)
		}
	}

	return &File{
		Path: path,
		Dir:  filepath.Dir(abs),
		Name: filepath.Base(abs),
		Data: data,
	}, nil
}

// isXZ checks for the XZ magic bytes (fd 37 7a 58 5a 00).
func isXZ(data []byte) bool {
	return len(data) >= 6 &&
		data[0] == 0xfd && data[1] == 0x37 && data[2] == 0x7a &&
		data[3] == 0x58 && data[4] == 0x5a && data[5] == 0x00
}
