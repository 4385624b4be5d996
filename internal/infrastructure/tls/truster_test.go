package tls

import (
	"os"
	"path/filepath"
	"testing"
)

// TrustCaddyCa itself shells out to docker to extract the cert, so it
// isn't unit-testable without a running container; this covers copyFile,
// the one pure filesystem helper on the Linux install path.
func TestCopyFile_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.crt")
	dst := filepath.Join(dir, "dst.crt")
	want := []byte("-----BEGIN CERTIFICATE-----\nfake\n-----END CERTIFICATE-----\n")
	if err := os.WriteFile(src, want, 0644); err != nil {
		t.Fatal(err)
	}

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile() error: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("got %q, want %q", got, want)
	}
}
