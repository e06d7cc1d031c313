package codegen_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// e2eScenario is one of spec.md's literal end-to-end scenarios: a C source
// string paired with the exit code main() must produce once assembled,
// linked, and run.
type e2eScenario struct {
	name string
	src  string
	want int
}

var e2eScenarios = []e2eScenario{
	{"arithmetic", "int main(){ return 3+5*2; }", 13},
	{"arrayPointer", "int main(){ int a[3]; a[0]=1; a[1]=2; a[2]=4; int *p=a; return *(p+2); }", 4},
	{"structMembers", "struct P{int x;int y;}; int main(){ struct P p; p.x=10; p.y=20; return p.x+p.y; }", 30},
	{"recursiveFib", "int f(int n){ if(n<2) return n; return f(n-1)+f(n-2); } int main(){ return f(10); }", 55},
	{"forLoopSum", "int main(){ int s=0; for(int i=0;i<5;i=i+1) s=s+i; return s; }", 10},
	{"switchCase", "int main(){ int x=3; switch(x){ case 1: return 1; case 3: return 30; default: return 99; } }", 30},
}

// TestEndToEndExitCodes implements spec.md section 8's mandatory evaluation
// property: assembled and linked output must produce the same exit code a
// reference C compiler would. It shells out to the host "cc" to assemble
// and link, so it is skipped where no C toolchain is installed.
func TestEndToEndExitCodes(t *testing.T) {
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("no host C toolchain (cc) available, skipping end-to-end evaluation")
	}

	for _, sc := range e2eScenarios {
		t.Run(sc.name, func(t *testing.T) {
			asm := compile(t, sc.src)

			dir := t.TempDir()
			asmPath := filepath.Join(dir, "out.s")
			if err := os.WriteFile(asmPath, []byte(asm), 0o644); err != nil {
				t.Fatalf("write assembly: %v", err)
			}

			binPath := filepath.Join(dir, "out")
			cmd := exec.Command(cc, "-o", binPath, asmPath)
			var stderr strings.Builder
			cmd.Stderr = &stderr
			if err := cmd.Run(); err != nil {
				t.Fatalf("assemble+link failed: %v\n%s", err, stderr.String())
			}

			run := exec.Command(binPath)
			runErr := run.Run()
			got := exitCode(t, runErr)
			if got != sc.want {
				t.Errorf("%s: exit code = %d, want %d", sc.src, got, sc.want)
			}
		})
	}
}

// exitCode extracts a process's exit code from the error Run returns, or 0
// if it exited cleanly.
func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("process did not run: %v", err)
	}
	return exitErr.ExitCode()
}
