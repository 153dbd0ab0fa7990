package gather

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
)

// metadataCandidates lists where build backends leave core metadata inside
// a source tree, in order of preference.
var metadataCandidates = []string{
	"PKG-INFO",
	"*.egg-info/PKG-INFO",
	"src/*.egg-info/PKG-INFO",
}

// metadataRequiresDist reads Requires-Dist from the first core metadata file
// found in root.
func metadataRequiresDist(root string) ([]string, error) {
	for _, pattern := range metadataCandidates {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		if len(matches) == 0 {
			continue
		}
		return readRequiresDist(matches[0])
	}
	return nil, fmt.Errorf("%w: dependencies are dynamic and no PKG-INFO was found in %s", ErrNotIntrospectable, root)
}

func readRequiresDist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := textproto.NewReader(bufio.NewReader(f)).ReadMIMEHeader()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrNotIntrospectable, path, err)
	}
	return header.Values("Requires-Dist"), nil
}
