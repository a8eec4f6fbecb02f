package videos

import "testing"

func TestNewID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if len(id) != shareIDLength {
			t.Fatalf("expected %d characters, got %q", shareIDLength, id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q in 100 draws", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewStorageNameKeepsExtension(t *testing.T) {
	name, err := NewStorageName("holiday clip.mp4")
	if err != nil {
		t.Fatalf("new storage name: %v", err)
	}
	if len(name) != storageNameLength+len(".mp4") {
		t.Fatalf("unexpected storage name %q", name)
	}
	if name[storageNameLength:] != ".mp4" {
		t.Fatalf("expected .mp4 suffix, got %q", name)
	}
}

func TestNewStorageNameNoExtension(t *testing.T) {
	name, err := NewStorageName("raw-upload")
	if err != nil {
		t.Fatalf("new storage name: %v", err)
	}
	if len(name) != storageNameLength {
		t.Fatalf("unexpected storage name %q", name)
	}
}
