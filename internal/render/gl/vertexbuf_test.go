package gl

import "testing"

func TestVertexPoolAcquireRelease(t *testing.T) {
	p := NewVertexPool(NewFakeDriver())

	s1, err := p.Acquire(100)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s1 != DynamicPoolStart {
		t.Fatalf("first acquire start = %d, want %d", s1, DynamicPoolStart)
	}

	s2, err := p.Acquire(50)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s2 != DynamicPoolStart+100 {
		t.Fatalf("second acquire start = %d, want %d", s2, DynamicPoolStart+100)
	}

	p.Release(s1, 100)
	s3, err := p.Acquire(100)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	if s3 != s1 {
		t.Fatalf("expected reuse of released slot %d, got %d", s1, s3)
	}
}

func TestVertexPoolExhaustion(t *testing.T) {
	p := NewVertexPool(NewFakeDriver())
	if _, err := p.Acquire(DynamicPoolCount + 1); err == nil {
		t.Fatal("expected exhaustion error requesting more than the pool holds")
	}
}
