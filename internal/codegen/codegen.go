package codegen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bfc/internal/ast"
	"bfc/internal/cache"
	"bfc/internal/logging"
)

// ---------------------------------------------------------------------------
// Options controls the behaviour of the build pipeline.
// ---------------------------------------------------------------------------

// Options configures the build pipeline.
type Options struct {
	// Target platform. If nil, the host platform is auto-detected.
	Target *Target

	// MemSize is the number of tape cells compiled into the module.
	MemSize uint

	// BuildDir is the directory where all build artifacts are written.
	// Defaults to "./build" relative to the working directory.
	BuildDir string

	// OutputName is the base name for the output files (without extension).
	// Defaults to "output".
	OutputName string

	// OptLevel selects the opt pass ("O0".."O3"). Empty skips opt and
	// hands the raw module to llc.
	OptLevel string

	// Verbose enables extra diagnostic output.
	Verbose bool

	// IROnly stops after writing the .ll file (skip opt + llc + link).
	IROnly bool

	// SkipLink stops after compiling (produce .o but don't link).
	SkipLink bool

	// NoCache bypasses the build cache entirely.
	NoCache bool

	// CacheDir overrides the cache location (empty = per-user default).
	CacheDir string

	// Explicit tool paths (empty = discover on PATH).
	OptPath    string
	LLCPath    string
	LinkerPath string
}

// DefaultOptions returns sensible defaults (host target, build/ directory).
func DefaultOptions() *Options {
	return &Options{
		MemSize:  100000,
		BuildDir: "build",
		OptLevel: "O2",
	}
}

// ---------------------------------------------------------------------------
// Result is returned by Generate with paths to all produced artifacts.
// ---------------------------------------------------------------------------

type Result struct {
	IRFile   string // path to the emitted .ll file
	ObjFile  string // path to the object file (empty if IROnly)
	ExeFile  string // path to the executable (empty if IROnly or SkipLink)
	IRText   string // the module text
	CacheHit bool   // the executable came out of the build cache
}

// ---------------------------------------------------------------------------
// Generate — the public entry point for the full build pipeline
//
// Pipeline: AST → LLVM IR (emit) → opt → Object (llc) → Executable (ld),
// with finished executables cached by module text.
// ---------------------------------------------------------------------------

// Generate runs the full build pipeline on the given program.
func Generate(nodes []ast.Node, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// --- Resolve target ---
	target := opts.Target
	if target == nil {
		var err error
		target, err = HostTarget()
		if err != nil {
			return nil, fmt.Errorf("cannot detect host target: %w", err)
		}
	}

	memSize := opts.MemSize
	if memSize == 0 {
		memSize = 100000
	}

	// --- Determine output name ---
	outputName := opts.OutputName
	if outputName == "" {
		outputName = "output"
	}
	// Sanitize: replace dots/spaces with underscores.
	outputName = strings.Map(func(r rune) rune {
		if r == '.' || r == ' ' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, outputName)

	// --- Create build directory ---
	buildDir := opts.BuildDir
	if buildDir == "" {
		buildDir = "build"
	}
	// Create platform-specific subdirectory.
	platformDir := filepath.Join(buildDir, fmt.Sprintf("%s_%s", target.OS, target.Arch))
	if err := os.MkdirAll(platformDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create build directory %s: %w", platformDir, err)
	}

	result := &Result{}

	// --- Step 1: Emit the module ---
	logging.Stage("emit", platformDir, "target", target.Triple(), "mem_size", memSize)
	result.IRText = Emit(nodes, memSize)

	tc := NewToolchain(target, nil, platformDir, outputName)
	tc.Verbose = opts.Verbose

	if err := tc.WriteIR(result.IRText); err != nil {
		return nil, fmt.Errorf("cannot write module file: %w", err)
	}
	result.IRFile = tc.IRFile

	if opts.IROnly {
		return result, nil
	}

	// --- Step 2: Gate on target ---
	if !target.Buildable() {
		logging.Warn("end-to-end builds need linux/x86_64, leaving the module file only",
			"target", fmt.Sprintf("%s/%s", target.OS, target.Arch), "ir", result.IRFile)
		return result, nil
	}

	// --- Step 3: Detect the toolchain ---
	tools, missing := DetectTools(opts.OptPath, opts.LLCPath, opts.LinkerPath)

	// llc accepts the raw module, so a missing opt drops the optimization
	// pass rather than the whole build. The effective level feeds the cache
	// key below: a fallback build must not be indexed as an optimized one.
	optLevel := opts.OptLevel
	if optLevel != "" && len(missing) == 1 && strings.HasPrefix(missing[0], "opt") {
		logging.Warn("opt not found, building unoptimized", "ir", result.IRFile)
		optLevel = ""
	}
	if optLevel == "" {
		// opt is not part of this build.
		kept := missing[:0]
		for _, m := range missing {
			if !strings.HasPrefix(m, "opt") {
				kept = append(kept, m)
			}
		}
		missing = kept
	}
	if len(missing) > 0 {
		logging.Warn("missing toolchain components, leaving the module file only",
			"missing", strings.Join(missing, ", "), "ir", result.IRFile)
		return result, nil
	}
	tc.Tools = tools
	tc.OptLevel = optLevel

	// --- Step 4: Consult the build cache ---
	var bc *cache.Cache
	if !opts.NoCache {
		var err error
		bc, err = cache.Open(opts.CacheDir)
		if err != nil {
			logging.Warn("build cache unavailable", "error", err)
			bc = nil
		} else {
			defer bc.Close()
		}
	}

	var key string
	if bc != nil {
		key = cache.Key([]byte(result.IRText), target.Triple(), optLevel)
	}
	if bc != nil && !opts.SkipLink {
		if _, err := bc.Lookup(key); err == nil {
			if err := bc.Extract(key, tc.ExeFile); err == nil {
				logging.CacheEvent("hit", key)
				result.ExeFile = tc.ExeFile
				result.CacheHit = true
				return result, nil
			}
			logging.Warn("cached build lost its blob, rebuilding", "key", key)
		} else if !errors.Is(err, cache.ErrNotFound) {
			logging.Warn("build cache lookup failed", "error", err)
		} else {
			logging.CacheEvent("miss", key)
		}
	}

	// --- Step 5: Optimize ---
	if optLevel != "" {
		logging.Stage("optimize", tc.OptFile, "level", optLevel)
		if err := tc.Optimize(); err != nil {
			return result, fmt.Errorf("optimization failed: %w", err)
		}
	}

	// --- Step 6: Compile ---
	logging.Stage("compile", tc.ObjFile)
	if err := tc.Compile(); err != nil {
		return result, fmt.Errorf("compilation failed: %w", err)
	}
	result.ObjFile = tc.ObjFile

	if opts.SkipLink {
		return result, nil
	}

	// --- Step 7: Link ---
	logging.Stage("link", tc.ExeFile)
	if err := tc.Link(); err != nil {
		return result, fmt.Errorf("linking failed: %w", err)
	}
	result.ExeFile = tc.ExeFile

	// --- Step 8: Store in the build cache ---
	if bc != nil {
		platform := fmt.Sprintf("%s/%s", target.OS, target.Arch)
		if err := bc.Store(key, platform, memSize, result.ExeFile); err != nil {
			logging.Warn("cannot store build in cache", "error", err)
		} else {
			logging.CacheEvent("store", key)
		}
	}

	return result, nil
}
