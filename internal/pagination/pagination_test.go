package pagination

import "testing"

func TestNormalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := PageRequest{}
		if err := p.Normalize(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Page != 1 || p.PageSize != DefaultPageSize {
			t.Errorf("expected defaults, got %+v", p)
		}
		if p.Offset() != 0 {
			t.Errorf("expected offset 0, got %d", p.Offset())
		}
	})

	t.Run("negative_rejected", func(t *testing.T) {
		p := PageRequest{Page: -1}
		if err := p.Normalize(); err == nil {
			t.Error("expected error for negative page")
		}
	})

	t.Run("too_large_rejected", func(t *testing.T) {
		p := PageRequest{PageSize: MaxPageSize + 1}
		if err := p.Normalize(); err == nil {
			t.Error("expected error for oversized page")
		}
	})
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[int](nil, 2, 12, 25)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
	if resp.Data == nil {
		t.Error("expected non-nil data slice")
	}
}
