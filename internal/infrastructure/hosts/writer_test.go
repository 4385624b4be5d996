package hosts

import (
	"strings"
	"testing"
)

func TestGenerateBlock_EmptyDomainsYieldsEmptyString(t *testing.T) {
	w := &Writer{}
	if got := w.GenerateBlock(nil); got != "" {
		t.Errorf("GenerateBlock(nil) = %q, want empty string", got)
	}
}

func TestReplaceBlock_AppendsWhenNoExistingMarker(t *testing.T) {
	original := "127.0.0.1 localhost\n"
	block := "# lo1-start\n127.0.0.1 api.acme.localhost.dev\n# lo1-end\n"

	updated := replaceBlock(original, block)
	if !strings.Contains(updated, original) || !strings.Contains(updated, block) {
		t.Errorf("updated = %q, want to contain both original and block", updated)
	}
}

func TestReplaceBlock_RemoveIsInverseOfApply_WhenNoPreexistingBlock(t *testing.T) {
	original := "127.0.0.1 localhost\n::1 localhost\n"
	block := "# lo1-start\n127.0.0.1 api.acme.localhost.dev\n# lo1-end\n"

	applied := replaceBlock(original, block)
	removed := replaceBlock(applied, "")

	if removed != original {
		t.Errorf("remove(apply(X)) = %q, want %q", removed, original)
	}
}

func TestReplaceBlock_SurgicallyReplacesOnlyBracketedRegion(t *testing.T) {
	withOldBlock := "before\n# lo1-start\n127.0.0.1 old.example\n# lo1-end\nafter\n"
	newBlock := "# lo1-start\n127.0.0.1 new.example\n# lo1-end\n"

	updated := replaceBlock(withOldBlock, newBlock)
	if !strings.Contains(updated, "before") || !strings.Contains(updated, "after") || !strings.Contains(updated, "new.example") || strings.Contains(updated, "old.example") {
		t.Errorf("got %q, want before/after preserved and only the block swapped", updated)
	}
}
