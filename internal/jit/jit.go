// Package jit drives the external C++ compiler and linker that turn a
// rendered cxx.Unit into a loadable shared library, per spec.md §4.10's
// JIT external-compiler job queue. Grounded on ailang's
// internal/eval_harness/runner.go exec.Command + goroutine/channel/select
// timeout pattern, retargeted from "run an LLM eval subprocess" to "run
// a C++ compiler subprocess".
package jit

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/hiltigo/hiltigo/internal/diag"
)

// Job is one compile-and-link request: a rendered C++ translation unit
// plus the object files it should be linked against.
type Job struct {
	Name       string
	Source     string
	LinkAgainst []string
	OutputDir  string
}

// Result is what a completed Job produced.
type Result struct {
	ObjectPath  string
	LibraryPath string
	Stdout      string
	Stderr      string
	Duration    time.Duration
}

// Compiler configures which external toolchain Queue invokes.
type Compiler struct {
	CXX       string // e.g. "c++", defaults if empty
	Flags     []string
	Timeout   time.Duration
}

// DefaultCompiler returns a Compiler using $CXX (or "c++") with the
// standard-and-optimization flags HILTI's build normally passes.
func DefaultCompiler() Compiler {
	cxx := os.Getenv("CXX")
	if cxx == "" {
		cxx = "c++"
	}
	return Compiler{
		CXX:     cxx,
		Flags:   []string{"-std=c++20", "-fPIC", "-O2"},
		Timeout: 2 * time.Minute,
	}
}

// Queue serializes Job submissions through a bounded worker pool, mirroring
// the external-compiler job queue spec.md §4.10 calls for: JIT is
// expensive, so concurrent driver runs share a small number of compiler
// invocations rather than spawning unboundedly.
type Queue struct {
	compiler Compiler
	sem      chan struct{}
}

// NewQueue creates a Queue allowing at most concurrency simultaneous
// compiler invocations.
func NewQueue(compiler Compiler, concurrency int) *Queue {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Queue{compiler: compiler, sem: make(chan struct{}, concurrency)}
}

// Submit compiles job.Source to an object file and, if job.LinkAgainst is
// non-empty, links it into a shared library. It blocks until a queue slot
// is free, the compiler finishes, or ctx is done.
func (q *Queue) Submit(ctx context.Context, job Job) (*Result, *diag.Report) {
	select {
	case q.sem <- struct{}{}:
		defer func() { <-q.sem }()
	case <-ctx.Done():
		return nil, diag.New(diag.JIT001, "job queue wait canceled").WithData("job", job.Name)
	}

	if job.OutputDir == "" {
		job.OutputDir = os.TempDir()
	}
	srcPath := filepath.Join(job.OutputDir, job.Name+".cc")
	objPath := filepath.Join(job.OutputDir, job.Name+".o")
	if err := os.WriteFile(srcPath, []byte(job.Source), 0o644); err != nil {
		return nil, diag.New(diag.JIT001, fmt.Sprintf("writing source failed: %v", err))
	}

	compileCtx, cancel := context.WithTimeout(ctx, q.compiler.Timeout)
	defer cancel()

	args := append(append([]string{}, q.compiler.Flags...), "-c", srcPath, "-o", objPath)
	start := time.Now()
	stdout, stderr, err := runCompiler(compileCtx, q.compiler.CXX, args)
	duration := time.Since(start)
	if err != nil {
		return nil, diag.New(diag.JIT001, fmt.Sprintf("compile failed: %v", err)).
			WithData("stderr", stderr).
			WithData("job", job.Name)
	}

	result := &Result{ObjectPath: objPath, Stdout: stdout, Stderr: stderr, Duration: duration}
	if len(job.LinkAgainst) == 0 {
		return result, nil
	}

	libPath := filepath.Join(job.OutputDir, job.Name+".so")
	linkArgs := append([]string{"-shared", "-o", libPath, objPath}, job.LinkAgainst...)
	linkCtx, linkCancel := context.WithTimeout(ctx, q.compiler.Timeout)
	defer linkCancel()
	lout, lerr, err := runCompiler(linkCtx, q.compiler.CXX, linkArgs)
	if err != nil {
		return nil, diag.New(diag.JIT002, fmt.Sprintf("link failed: %v", err)).
			WithData("stderr", lerr).
			WithData("job", job.Name)
	}
	result.LibraryPath = libPath
	result.Stdout += lout
	result.Stderr += lerr
	return result, nil
}

func runCompiler(ctx context.Context, name string, args []string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}
