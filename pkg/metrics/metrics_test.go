package metrics

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const apiPackage = "github.com/recordhub/records-api/internal/api"

// Core and storage packages record metrics through this package and never
// reach up into the HTTP layer.
func TestLowerLayersDoNotImportAPI(t *testing.T) {
	for _, root := range []string{"../../internal/core", "../../internal/infrastructure"} {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
				return err
			}
			f, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.ImportsOnly)
			if err != nil {
				return err
			}
			for _, imp := range f.Imports {
				p, _ := strconv.Unquote(imp.Path.Value)
				if p == apiPackage || strings.HasPrefix(p, apiPackage+"/") {
					t.Errorf("%s imports %s", path, p)
				}
			}
			return nil
		})
		require.NoError(t, err)
	}
}
