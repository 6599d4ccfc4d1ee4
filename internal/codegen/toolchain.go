package codegen

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ---------------------------------------------------------------------------
// Toolchain — opt + llc + linker invocation
// ---------------------------------------------------------------------------

// Toolchain drives the external programs that turn the emitted module into
// an executable.
type Toolchain struct {
	Target   *Target
	Tools    *LLVMTools
	BuildDir string
	IRFile   string // path to the emitted .ll file
	OptFile  string // path to the optimized .ll file (written by Optimize)
	ObjFile  string // path to the object file
	ExeFile  string // path to the final executable
	OptLevel string // opt pass level ("O0".."O3", "" skips the pass)
	Verbose  bool

	// llcInput is the file handed to llc: the raw IR, or the optimized IR
	// once Optimize has run.
	llcInput string
}

// NewToolchain creates a Toolchain for the given target and build directory.
func NewToolchain(target *Target, tools *LLVMTools, buildDir, baseName string) *Toolchain {
	irFile := filepath.Join(buildDir, baseName+".ll")
	return &Toolchain{
		Target:   target,
		Tools:    tools,
		BuildDir: buildDir,
		IRFile:   irFile,
		OptFile:  filepath.Join(buildDir, baseName+".opt.ll"),
		ObjFile:  filepath.Join(buildDir, baseName+target.FileExtObj()),
		ExeFile:  filepath.Join(buildDir, baseName+target.FileExtExe()),
		llcInput: irFile,
	}
}

// WriteIR writes the module text to the .ll file.
func (tc *Toolchain) WriteIR(ir string) error {
	return os.WriteFile(tc.IRFile, []byte(ir), 0644)
}

// Optimize runs opt over the emitted module and points llc at the result.
func (tc *Toolchain) Optimize() error {
	cmd := exec.Command(tc.Tools.Opt, "-"+tc.OptLevel, "-S", "-o", tc.OptFile, tc.IRFile)
	if err := tc.runCmd(cmd, "optimize"); err != nil {
		return err
	}
	tc.llcInput = tc.OptFile
	return nil
}

// Compile invokes llc to produce an object file from the module.
func (tc *Toolchain) Compile() error {
	cmd := exec.Command(tc.Tools.LLC,
		"-filetype=obj",
		"-mtriple="+tc.Target.Triple(),
		"-o", tc.ObjFile,
		tc.llcInput)
	return tc.runCmd(cmd, "compile")
}

// Link invokes the linker to produce the final executable.  The module
// defines its own _start and makes raw syscalls, so nothing else is linked
// in and the linker's default entry symbol already matches.
func (tc *Toolchain) Link() error {
	cmd := exec.Command(tc.Tools.Linker, "-o", tc.ExeFile, tc.ObjFile)
	return tc.runCmd(cmd, "link")
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (tc *Toolchain) runCmd(cmd *exec.Cmd, stage string) error {
	if tc.Verbose {
		fmt.Printf("[toolchain] %s: %s\n", stage, strings.Join(cmd.Args, " "))
	}

	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = os.Stdout

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%s failed: %v\n%s", stage, err, stderr.String())
	}
	return nil
}
