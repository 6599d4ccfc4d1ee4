package codegen

import (
	"fmt"
	"runtime"
)

// ---------------------------------------------------------------------------
// OS / Architecture enums
// ---------------------------------------------------------------------------

// OS represents a target operating system.
type OS int

const (
	OS_Linux  OS = iota
	OS_Darwin    // macOS
	OS_Windows
)

func (o OS) String() string {
	switch o {
	case OS_Linux:
		return "linux"
	case OS_Darwin:
		return "darwin"
	case OS_Windows:
		return "windows"
	default:
		return "unknown"
	}
}

// Arch represents a target CPU architecture.
type Arch int

const (
	Arch_x86_64 Arch = iota
	Arch_ARM64       // AArch64
)

func (a Arch) String() string {
	switch a {
	case Arch_x86_64:
		return "x86_64"
	case Arch_ARM64:
		return "arm64"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Target — a fully-resolved compilation target
// ---------------------------------------------------------------------------

// Target identifies the platform the object file and executable are built
// for.  The emitted module performs I/O through raw x86-64 Linux syscalls,
// so only linux/x86_64 can be taken all the way to an executable; other
// targets still resolve so the CLI can name them in diagnostics.
type Target struct {
	OS   OS
	Arch Arch
}

// HostTarget returns a Target matching the current Go runtime (GOOS/GOARCH).
func HostTarget() (*Target, error) {
	return ResolveTarget(runtime.GOOS, runtime.GOARCH)
}

// ResolveTarget builds a Target from OS/Arch name strings.  Both Go-style
// ("amd64") and LLVM-style ("x86_64") architecture names are accepted.
func ResolveTarget(osName, archName string) (*Target, error) {
	t := &Target{}

	switch osName {
	case "linux":
		t.OS = OS_Linux
	case "darwin":
		t.OS = OS_Darwin
	case "windows":
		t.OS = OS_Windows
	default:
		return nil, fmt.Errorf("unsupported OS: %s", osName)
	}

	switch archName {
	case "amd64", "x86_64":
		t.Arch = Arch_x86_64
	case "arm64", "aarch64":
		t.Arch = Arch_ARM64
	default:
		return nil, fmt.Errorf("unsupported architecture: %s", archName)
	}

	return t, nil
}

// ---------------------------------------------------------------------------
// Helper queries
// ---------------------------------------------------------------------------

// Triple returns the LLVM target triple passed to llc.
func (t *Target) Triple() string {
	arch := "x86_64"
	if t.Arch == Arch_ARM64 {
		arch = "aarch64"
	}
	switch t.OS {
	case OS_Darwin:
		return arch + "-apple-darwin"
	case OS_Windows:
		return arch + "-pc-windows-msvc"
	default:
		return arch + "-unknown-linux-gnu"
	}
}

// Buildable reports whether the target can be taken through llc and the
// linker.  The inline syscall asm pins the module to x86-64 Linux.
func (t *Target) Buildable() bool {
	return t.OS == OS_Linux && t.Arch == Arch_x86_64
}

// FileExtObj returns the platform object file extension (.o or .obj).
func (t *Target) FileExtObj() string {
	if t.OS == OS_Windows {
		return ".obj"
	}
	return ".o"
}

// FileExtExe returns the platform executable extension ("" or ".exe").
func (t *Target) FileExtExe() string {
	if t.OS == OS_Windows {
		return ".exe"
	}
	return ""
}
