package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sweeklys/vmadm-go/jailconfig"
	"github.com/sweeklys/vmadm-go/vmerrors"
)

// initJailRoot creates `<jail_root>/config` and writes the files that depend only on
// configuration, not on a live boot: resolvers (one per line), and root_authorized_keys /
// user_script, each written only if the corresponding metadata key is present.
func (e *Engine) initJailRoot(ctx context.Context, cfg jailconfig.ContainerConfig, rootDataset string) error {
	jailRoot := "/" + rootDataset
	configDir := filepath.Join(jailRoot, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return vmerrors.Generic("creating %s: %w", configDir, err)
	}

	if len(cfg.Resolvers) > 0 {
		content := strings.Join(cfg.Resolvers, "\n") + "\n"
		if err := os.WriteFile(filepath.Join(configDir, "resolvers"), []byte(content), 0o644); err != nil {
			return vmerrors.Generic("writing resolvers: %w", err)
		}
	}

	if keys, ok := cfg.InternalMetadata[jailconfig.MetadataRootAuthorizedKeys]; ok {
		if err := os.WriteFile(filepath.Join(configDir, "root_authorized_keys"), []byte(keys), 0o600); err != nil {
			return vmerrors.Generic("writing root_authorized_keys: %w", err)
		}
	}

	if script, ok := cfg.InternalMetadata[jailconfig.MetadataUserScript]; ok {
		if err := os.WriteFile(filepath.Join(configDir, "user_script"), []byte(script), 0o755); err != nil {
			return vmerrors.Generic("writing user_script: %w", err)
		}
	}

	return nil
}
