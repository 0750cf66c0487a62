package jit

import (
	"context"
	"testing"
	"time"
)

func TestDefaultCompilerHonorsCXXEnv(t *testing.T) {
	t.Setenv("CXX", "my-special-compiler")
	c := DefaultCompiler()
	if c.CXX != "my-special-compiler" {
		t.Errorf("CXX = %q, want my-special-compiler", c.CXX)
	}
}

func TestDefaultCompilerFallsBackWhenCXXUnset(t *testing.T) {
	t.Setenv("CXX", "")
	c := DefaultCompiler()
	if c.CXX != "c++" {
		t.Errorf("CXX = %q, want c++ fallback", c.CXX)
	}
}

func TestSubmitReportsJIT001OnCompileFailure(t *testing.T) {
	q := NewQueue(Compiler{CXX: "definitely-not-a-real-compiler-xyz", Timeout: 2 * time.Second}, 1)
	_, rep := q.Submit(context.Background(), Job{Name: "job1", Source: "int main() {}", OutputDir: t.TempDir()})
	if rep == nil || rep.Code != "JIT001" {
		t.Fatalf("expected JIT001 for an unresolvable compiler, got %v", rep)
	}
}

func TestSubmitSucceedsWithATrivialCompiler(t *testing.T) {
	// "true" ignores its arguments and exits 0, standing in for a compiler
	// that successfully produced an object file (Submit itself doesn't
	// inspect object-file contents, only the subprocess's exit status).
	q := NewQueue(Compiler{CXX: "true", Timeout: 2 * time.Second}, 1)
	result, rep := q.Submit(context.Background(), Job{Name: "job1", Source: "int main() {}", OutputDir: t.TempDir()})
	if rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	if result.ObjectPath == "" {
		t.Errorf("expected a non-empty ObjectPath")
	}
	if result.LibraryPath != "" {
		t.Errorf("LibraryPath should stay empty when LinkAgainst is empty, got %q", result.LibraryPath)
	}
}

func TestSubmitRespectsQueueBound(t *testing.T) {
	q := NewQueue(Compiler{CXX: "true", Timeout: 2 * time.Second}, 2)
	if cap(q.sem) != 2 {
		t.Fatalf("cap(sem) = %d, want 2", cap(q.sem))
	}
}

func TestNewQueueClampsNonPositiveConcurrency(t *testing.T) {
	q := NewQueue(Compiler{CXX: "true"}, 0)
	if cap(q.sem) != 1 {
		t.Fatalf("cap(sem) = %d, want 1 when concurrency <= 0", cap(q.sem))
	}
}
