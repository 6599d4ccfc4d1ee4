package codegen

import (
	"os"
	"os/exec"
)

// ---------------------------------------------------------------------------
// LLVM tool discovery
//
// The build pipeline shells out to opt, llc and the system linker.  Distros
// ship the LLVM binaries either bare ("llc") or with a version suffix
// ("llc-18"), so discovery probes the bare name first and then walks the
// suffixed candidates from newest to oldest.  Explicit paths from the config
// file win over PATH lookup.
// ---------------------------------------------------------------------------

// LLVMTools holds resolved paths to the external programs the build uses.
type LLVMTools struct {
	Opt    string // LLVM IR optimizer
	LLC    string // LLVM static compiler (IR -> object file)
	Linker string // system linker
}

// llvmVersions lists the binary name suffixes probed after the bare name,
// newest first.
var llvmVersions = []string{"21", "20", "19", "18", "17", "16", "15", "14"}

// DetectTools resolves the external toolchain, honouring explicit path
// overrides, and returns the resolved tools plus the names of any that
// could not be found.
func DetectTools(optPath, llcPath, linkerPath string) (*LLVMTools, []string) {
	tools := &LLVMTools{}
	var missing []string

	if p, ok := findLLVMTool(optPath, "opt"); ok {
		tools.Opt = p
	} else {
		missing = append(missing, "opt (LLVM optimizer)")
	}

	if p, ok := findLLVMTool(llcPath, "llc"); ok {
		tools.LLC = p
	} else {
		missing = append(missing, "llc (LLVM static compiler)")
	}

	if p, ok := findLinker(linkerPath); ok {
		tools.Linker = p
	} else {
		missing = append(missing, "ld (linker)")
	}

	return tools, missing
}

// findLLVMTool checks an explicit override first, then PATH under the bare
// name, then the version-suffixed names.
func findLLVMTool(override, name string) (string, bool) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", false
		}
		return override, true
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, true
	}
	for _, v := range llvmVersions {
		if p, err := exec.LookPath(name + "-" + v); err == nil {
			return p, true
		}
	}
	return "", false
}

// findLinker prefers GNU ld and falls back to LLVM's lld.
func findLinker(override string) (string, bool) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", false
		}
		return override, true
	}
	for _, l := range []string{"ld", "ld.lld"} {
		if p, err := exec.LookPath(l); err == nil {
			return p, true
		}
	}
	return "", false
}
