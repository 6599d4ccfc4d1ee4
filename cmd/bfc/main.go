// Command bfc compiles and interprets Brainfuck programs.
// The build pipeline lowers a program to an LLVM module and drives the
// external LLVM toolchain to produce a freestanding native executable.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"bfc/internal/ast"
	"bfc/internal/codegen"
	"bfc/internal/config"
	"bfc/internal/interp"
	"bfc/internal/lexer"
	"bfc/internal/logging"
	"bfc/internal/optimizer"
	"bfc/internal/parser"
	"bfc/internal/source"
)

const version = "0.1.0"

var cfg *config.Config

// CLI defines the command-line interface for bfc.
var CLI struct {
	// Global flags
	Config    string `short:"c" help:"Config file (default: bfc.yaml)"`
	Verbose   bool   `short:"v" help:"Enable debug logging"`
	LogFormat string `name:"log-format" help:"Log format: text or json (overrides config)"`

	Run     RunCmd     `cmd:"" help:"Interpret a program"`
	Build   BuildCmd   `cmd:"" help:"Compile a program to a native executable"`
	IR      IRCmd      `cmd:"" help:"Print the LLVM module for a program"`
	Check   CheckCmd   `cmd:"" help:"Parse a program and report errors"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// loadProgram runs the front half of the pipeline: load, scan, parse,
// optimize. Every command starts here.
func loadProgram(path string) ([]ast.Node, *source.File, error) {
	f, err := source.Load(path)
	if err != nil {
		return nil, nil, err
	}
	symbols := lexer.Scan(f.Reader(), f.Name, f.Dir)
	nodes, err := parser.Parse(symbols)
	if err != nil {
		return nil, nil, err
	}
	return optimizer.Optimize(nodes), f, nil
}

// memSize picks the tape size: command flag first, then config file.
func memSize(override uint) uint {
	if override != 0 {
		return override
	}
	if cfg.MemSize != 0 {
		return cfg.MemSize
	}
	return config.DefaultMemSize
}

// resolveTarget parses an os/arch pair, defaulting to the host platform.
func resolveTarget(spec string) (*codegen.Target, error) {
	if spec == "" {
		return codegen.HostTarget()
	}
	osName, archName, ok := strings.Cut(spec, "/")
	if !ok {
		return nil, fmt.Errorf("invalid target %q (expected os/arch, e.g. linux/amd64)", spec)
	}
	return codegen.ResolveTarget(osName, archName)
}

// RunCmd interprets a program directly.
type RunCmd struct {
	File    string `arg:"" help:"Program file (- for stdin)"`
	MemSize uint   `name:"mem-size" help:"Tape size in cells (overrides config)"`
}

func (c *RunCmd) Run() error {
	prog, f, err := loadProgram(c.File)
	if err != nil {
		return err
	}

	size := memSize(c.MemSize)
	logging.Debug("executing program", "file", f.Name, "cells", size)

	state := interp.New(size)
	return state.Exec(prog)
}

// BuildCmd compiles a program to a native executable.
type BuildCmd struct {
	File     string `arg:"" help:"Program file (- for stdin)"`
	Target   string `help:"Target platform as os/arch (e.g. linux/amd64)"`
	Output   string `short:"o" help:"Base name for build artifacts (defaults to the source file name)"`
	BuildDir string `name:"build-dir" help:"Directory for build artifacts" default:"build"`
	MemSize  uint   `name:"mem-size" help:"Tape size in cells (overrides config)"`
	SkipLink bool   `name:"skip-link" help:"Stop after the object file"`
	NoCache  bool   `name:"no-cache" help:"Bypass the build cache"`
}

func (c *BuildCmd) Run() error {
	prog, f, err := loadProgram(c.File)
	if err != nil {
		return err
	}

	target, err := resolveTarget(c.Target)
	if err != nil {
		return err
	}

	opts := codegen.DefaultOptions()
	opts.Target = target
	opts.MemSize = memSize(c.MemSize)
	opts.BuildDir = c.BuildDir
	opts.OutputName = c.Output
	if opts.OutputName == "" && f.Name != source.StdinName {
		opts.OutputName = outputBase(f.Name)
	}
	opts.OptLevel = cfg.Toolchain.OptLevel
	opts.Verbose = CLI.Verbose
	opts.SkipLink = c.SkipLink
	opts.NoCache = c.NoCache || cfg.Cache.Disabled
	opts.CacheDir = cfg.Cache.Dir
	opts.OptPath = cfg.Toolchain.Opt
	opts.LLCPath = cfg.Toolchain.LLC
	opts.LinkerPath = cfg.Toolchain.Linker

	result, err := codegen.Generate(prog, opts)
	if err != nil {
		return err
	}

	fmt.Println("Build artifacts:")
	if result.IRFile != "" {
		fmt.Printf("  Module:  %s\n", result.IRFile)
	}
	if result.ObjFile != "" {
		fmt.Printf("  Object:  %s\n", result.ObjFile)
	}
	if result.ExeFile != "" {
		if result.CacheHit {
			fmt.Printf("  Binary:  %s (cached)\n", result.ExeFile)
		} else {
			fmt.Printf("  Binary:  %s\n", result.ExeFile)
		}
	}
	return nil
}

// outputBase strips the source extensions from a file name, so prog.bf and
// prog.bf.xz both build artifacts named prog.
func outputBase(name string) string {
	name = strings.TrimSuffix(name, ".xz")
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// IRCmd prints the LLVM module to standard output.
type IRCmd struct {
	File    string `arg:"" help:"Program file (- for stdin)"`
	Output  string `short:"o" help:"Write the module to a file instead of stdout"`
	MemSize uint   `name:"mem-size" help:"Tape size in cells (overrides config)"`
	NoOpt   bool   `name:"no-opt" help:"Emit from the unoptimized instruction tree"`
}

func (c *IRCmd) Run() error {
	f, err := source.Load(c.File)
	if err != nil {
		return err
	}
	symbols := lexer.Scan(f.Reader(), f.Name, f.Dir)
	nodes, err := parser.Parse(symbols)
	if err != nil {
		return err
	}
	if !c.NoOpt {
		nodes = optimizer.Optimize(nodes)
	}

	ir := codegen.Emit(nodes, memSize(c.MemSize))
	if c.Output != "" {
		return os.WriteFile(c.Output, []byte(ir), 0644)
	}
	fmt.Println(ir)
	return nil
}

// CheckCmd parses a program without running or compiling it.
type CheckCmd struct {
	File    string `arg:"" help:"Program file (- for stdin)"`
	DumpAST bool   `name:"dump-ast" help:"Print the instruction tree"`
}

func (c *CheckCmd) Run() error {
	prog, f, err := loadProgram(c.File)
	if err != nil {
		return err
	}
	if c.DumpAST {
		fmt.Print(ast.Dump(prog))
		return nil
	}
	fmt.Printf("%s: ok\n", f.Name)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("bfc %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("bfc"),
		kong.Description("Brainfuck compiler and interpreter with an LLVM backend"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	cfg = loadConfig(ctx)

	level := cfg.LogLevel()
	if CLI.Verbose {
		level = logging.LevelDebug
	}
	format := cfg.LogFormat()
	switch CLI.LogFormat {
	case "json":
		format = logging.FormatJSON
	case "text":
		format = logging.FormatText
	}
	logging.InitLogger(level, format)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// loadConfig loads the config file named on the command line, falling back
// to bfc.yaml in the working directory, then to built-in defaults.
func loadConfig(ctx *kong.Context) *config.Config {
	if CLI.Config != "" {
		c, err := config.Load(CLI.Config)
		ctx.FatalIfErrorf(err)
		return c
	}
	if c, err := config.Load("bfc.yaml"); err == nil {
		return c
	}
	return config.DefaultConfig()
}
