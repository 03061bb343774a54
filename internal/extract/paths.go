package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bave/unp7m"
	"github.com/spf13/afero"
)

// fallbackName is used when stripping the envelope extension leaves nothing.
const fallbackName = "content"

// OutputDir returns the directory that receives the payload extracted from
// inputPath: a child named dirName of the input's own directory.
func OutputDir(inputPath, dirName string) string {
	return filepath.Join(filepath.Dir(inputPath), dirName)
}

// OutputName picks the file name for an extracted payload.
//
// A filename declared inside the envelope wins. Otherwise the input base name
// is used with the envelope extension removed once per unwrapped layer, so
// "report.pdf.p7m.p7m" unwrapped twice becomes "report.pdf". The extension
// is matched case-insensitively.
func OutputName(inputPath string, p *cms.Payload, extension string) string {
	if p != nil && p.Filename != "" {
		return p.Filename
	}

	layers := 1
	if p != nil && p.Layers > 1 {
		layers = p.Layers
	}

	name := filepath.Base(inputPath)
	for i := 0; i < layers; i++ {
		stripped, ok := trimExtension(name, extension)
		if !ok {
			break
		}
		name = stripped
	}

	if name == "" || name == "." || name == ".." {
		return fallbackName
	}

	return name
}

func trimExtension(name, extension string) (string, bool) {
	if extension == "" || len(name) < len(extension) {
		return name, false
	}

	cut := len(name) - len(extension)
	if !strings.EqualFold(name[cut:], extension) {
		return name, false
	}

	return name[:cut], true
}

// Expand replaces every directory among args with the entries it contains,
// one level deep and sorted by name. Other arguments are kept as given, even
// when they don't exist, so that the batch reports them.
func Expand(fs afero.Fs, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := fs.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := afero.ReadDir(fs, arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %q; %w", arg, err)
		}
		for _, entry := range entries {
			paths = append(paths, filepath.Join(arg, entry.Name()))
		}
	}

	return paths, nil
}

func normalizeExtension(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
