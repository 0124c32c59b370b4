// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

package contextfile

import (
	"errors"
	"testing"
)

func TestWriteCreatesThenAppends(t *testing.T) {
	project := t.TempDir()

	if err := Write(project, "auth", "# Auth notes"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(project, "auth", "second entry"); err != nil {
		t.Fatalf("append Write: %v", err)
	}

	content, err := Read(project, "auth")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if content != "# Auth notes\nsecond entry\n" {
		t.Errorf("content = %q", content)
	}
}

func TestReadMissingFeatureReturnsNotFound(t *testing.T) {
	_, err := Read(t.TempDir(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	project := t.TempDir()
	if err := Write(project, "auth", "notes"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := Delete(project, "auth"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Already absent is success.
	if err := Delete(project, "auth"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := Read(project, "auth"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read after Delete = %v, want ErrNotFound", err)
	}
}

func TestListPreviews(t *testing.T) {
	project := t.TempDir()
	if err := Write(project, "billing", "# Billing\ndetails"); err != nil {
		t.Fatal(err)
	}
	if err := Write(project, "auth", "# Auth"); err != nil {
		t.Fatal(err)
	}

	previews, err := List(project)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(previews) != 2 {
		t.Fatalf("got %d previews, want 2", len(previews))
	}
	if previews[0].FeatureID != "auth" || previews[1].FeatureID != "billing" {
		t.Errorf("order = %s, %s", previews[0].FeatureID, previews[1].FeatureID)
	}
	if previews[1].FirstLine != "# Billing" {
		t.Errorf("FirstLine = %q", previews[1].FirstLine)
	}
	if previews[0].Size == 0 {
		t.Error("Size = 0")
	}
}

func TestListMissingDirectoryIsEmpty(t *testing.T) {
	previews, err := List(t.TempDir())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(previews) != 0 {
		t.Errorf("got %d previews, want 0", len(previews))
	}
}

func TestFeatureIDCannotEscapeContextDirectory(t *testing.T) {
	project := t.TempDir()
	for _, id := range []string{"", ".", "..", "../evil", "a/b", `a\b`} {
		if err := Write(project, id, "x"); err == nil {
			t.Errorf("Write accepted feature ID %q", id)
		}
		if _, err := Read(project, id); err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("Read accepted feature ID %q", id)
		}
		if err := Delete(project, id); err == nil {
			t.Errorf("Delete accepted feature ID %q", id)
		}
	}
}
