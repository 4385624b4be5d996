// Package tls extracts Caddy's internal root CA certificate from the
// running proxy container and installs it into the host trust store,
// skipping the install when the on-disk hash already matches. No teacher
// or pack precedent manages a trust store; grounded on the only fitting
// idiom available — shelling out via os/exec the same way the container
// runner and hook executor do, plus crypto/sha256 for the idempotency
// hash spec.md §9 calls for.
package tls

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/vivekkundariya/lo1/internal/application/ports"
)

const caCertPathInContainer = "/data/caddy/pki/authorities/local/root.crt"

// Truster implements ports.TlsTruster.
type Truster struct {
	// StateDir holds the cached cert + hash, normally <workspaceDir>/.lo1.
	StateDir string
}

func NewTruster(stateDir string) *Truster {
	return &Truster{StateDir: stateDir}
}

// TrustCaddyCa extracts the proxy container's root CA and installs it
// into the host trust store. A second call with an unchanged cert is a
// no-op: the extracted cert's sha256 is compared against the cached
// hash before touching the trust store.
func (t *Truster) TrustCaddyCa(containerName string) error {
	cert, err := extractCert(containerName)
	if err != nil {
		return &ports.TlsError{Message: fmt.Sprintf("failed to extract CA from %s: %v", containerName, err)}
	}

	hash := sha256.Sum256(cert)
	hashHex := hex.EncodeToString(hash[:])

	hashPath := filepath.Join(t.StateDir, "caddy-ca.sha256")
	if existing, err := os.ReadFile(hashPath); err == nil && string(existing) == hashHex {
		return nil
	}

	certPath := filepath.Join(t.StateDir, "caddy-ca.crt")
	if err := os.WriteFile(certPath, cert, 0644); err != nil {
		return &ports.TlsError{Message: fmt.Sprintf("failed to write cert: %v", err)}
	}

	if err := installIntoTrustStore(certPath); err != nil {
		return &ports.TlsError{Message: fmt.Sprintf("failed to install cert into trust store: %v", err)}
	}

	if err := os.WriteFile(hashPath, []byte(hashHex), 0644); err != nil {
		return &ports.TlsError{Message: fmt.Sprintf("failed to record cert hash: %v", err)}
	}

	return nil
}

func extractCert(containerName string) ([]byte, error) {
	cmd := exec.Command("docker", "exec", containerName, "cat", caCertPathInContainer)
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func installIntoTrustStore(certPath string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("security", "add-trusted-cert", "-d", "-r", "trustRoot",
			"-k", "/Library/Keychains/System.keychain", certPath)
	case "linux":
		dest := "/usr/local/share/ca-certificates/lo1-caddy.crt"
		if err := copyFile(certPath, dest); err != nil {
			return err
		}
		cmd = exec.Command("update-ca-certificates")
	case "windows":
		cmd = exec.Command("certutil", "-addstore", "-f", "ROOT", certPath)
	default:
		return fmt.Errorf("unsupported platform %q for trust store install", runtime.GOOS)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(out))
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
