package codegen_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"ccompile/internal/filetest"
)

var testUpdateCodegenTests = flag.Bool("test.update-codegen-tests", false, "If set, replace expected codegen golden output with actual output.")

// TestGenerateGolden exercises the full pipeline against every fixture under
// testdata/in and diffs the emitted assembly against the golden file of the
// same name under testdata/out, the same in/out testdata layout the teacher
// uses for its own golden tests.
func TestGenerateGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")
	for _, fi := range filetest.SourceFiles(t, srcDir, ".c") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}
			out := compile(t, string(src))
			filetest.DiffOutput(t, fi, out, resultDir, testUpdateCodegenTests)
		})
	}
}
