// Package cmd implements the vapid CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/web-push-libs/vapid/pkg/clierror"
	"github.com/web-push-libs/vapid/pkg/vapid"
	"github.com/web-push-libs/vapid/pkg/vaultstore"
)

var (
	// Global flags
	outputFormat string
	keyPath      string
	useVault     bool
	vaultMount   string
	vaultPath    string
)

var rootCmd = newRootCmd()

// newRootCmd builds the command tree. Tests call it to get a fresh tree
// with flag variables reset to their defaults.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vapid",
		Short: "Sign Web Push authorization headers",
		Long: `vapid manages the signing key that identifies an application server
to Web Push services and turns claim sets into the Authorization
headers a push request must carry.

It provides commands to generate a P-256 key pair, sign claims files
into draft-01 or draft-02 headers, and sign dashboard validation
tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	root.PersistentFlags().StringVar(&keyPath, "key", "", "Private key file (default: $VAPID_KEY or ./private_key.pem)")
	root.PersistentFlags().BoolVar(&useVault, "vault", false, "Keep the signing key in Vault instead of a file")
	root.PersistentFlags().StringVar(&vaultMount, "vault-mount", vaultstore.DefaultMount, "Vault KV v2 mount holding the key")
	root.PersistentFlags().StringVar(&vaultPath, "vault-path", vaultstore.DefaultPath, "Secret path under the Vault mount")

	root.AddCommand(newKeygenCmd())
	root.AddCommand(newSignCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// OutputFormat returns the value of the --output flag for error rendering
// after Execute returns.
func OutputFormat() string {
	return outputFormat
}

// vaultKeyStore adapts the context-taking Vault store to the KeyStore
// surface the commands consume.
type vaultKeyStore struct {
	inner *vaultstore.KeyStore
}

func (s vaultKeyStore) Load() (*vapid.Key, error) {
	return s.inner.Load(context.Background())
}

func (s vaultKeyStore) Save(key *vapid.Key) error {
	return s.inner.Save(context.Background(), key)
}

func (s vaultKeyStore) Exists() bool {
	return s.inner.Exists(context.Background())
}

func (s vaultKeyStore) Path() string {
	return s.inner.Path()
}

// openKeyStore resolves the configured key backend: Vault when --vault is
// set, otherwise the key file named by --key or its default.
func openKeyStore() (vapid.KeyStore, error) {
	if useVault {
		vs, err := vaultstore.New(vaultstore.Config{Mount: vaultMount, Path: vaultPath})
		if err != nil {
			return nil, clierror.VaultUnavailable(err)
		}
		return vaultKeyStore{inner: vs}, nil
	}

	path := keyPath
	if path == "" {
		path = vapid.DefaultKeyPath()
	}
	return vapid.NewFileKeyStore(path), nil
}

// loadSigningKey loads the configured private key, mapping storage
// failures to CLI errors with exit codes.
func loadSigningKey() (*vapid.Key, error) {
	store, err := openKeyStore()
	if err != nil {
		return nil, err
	}

	key, err := store.Load()
	if err != nil {
		switch {
		case vapid.IsNotFoundError(err):
			return nil, clierror.KeyNotFound(store.Path())
		case vapid.IsPermissionError(err), vapid.IsKeyFormat(err):
			return nil, clierror.KeyUnreadable(store.Path(), err)
		case useVault:
			return nil, clierror.VaultUnavailable(err)
		}
		return nil, clierror.InternalError(err)
	}
	return key, nil
}

// formatOutput renders data according to the --output flag. Text format
// is handled by each command.
func formatOutput(cmd *cobra.Command, data interface{}) error {
	switch outputFormat {
	case "json":
		return outputJSON(cmd, data)
	case "yaml":
		return outputYAML(cmd, data)
	default:
		return nil
	}
}

func outputJSON(cmd *cobra.Command, data interface{}) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func outputYAML(cmd *cobra.Command, data interface{}) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}
