package cmd

import (
	"encoding/json"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/web-push-libs/vapid/pkg/clierror"
	"github.com/web-push-libs/vapid/pkg/vapid"
)

var keyFmt = color.New(color.FgGreen).SprintFunc()

// keygenResult is the machine-readable shape of a generated key pair.
type keygenResult struct {
	PrivateKeyPath       string `json:"private_key_path" yaml:"private_key_path"`
	PublicKeyPath        string `json:"public_key_path,omitempty" yaml:"public_key_path,omitempty"`
	ApplicationServerKey string `json:"application_server_key" yaml:"application_server_key"`
	JWK                  string `json:"jwk,omitempty" yaml:"jwk,omitempty"`
}

func newKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new signing key pair",
		Long: `Generate a new P-256 key pair and save it to the key store.

The private key is written as an EC PEM file readable only by the
owner, with a public_key.pem sibling alongside it. The printed
Application Server Key is the value browsers expect in
PushManager.subscribe({applicationServerKey: ...}).

Refuses to replace an existing key unless --force is given. Push
subscriptions made against the old key stop working once it is
replaced.

Examples:
  vapid keygen
  vapid keygen --key ./signing/private_key.pem
  vapid keygen --force
  vapid keygen --jwk
  vapid keygen --vault --vault-path push/signing-key`,
		Args: cobra.NoArgs,
		RunE: runKeygen,
	}

	cmd.Flags().Bool("force", false, "Replace an existing key")
	cmd.Flags().Bool("jwk", false, "Also print the public key as a JWK document")

	return cmd
}

func runKeygen(cmd *cobra.Command, args []string) error {
	store, err := openKeyStore()
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	if store.Exists() && !force {
		return clierror.KeyExists(store.Path())
	}

	key, err := vapid.GenerateKey()
	if err != nil {
		return clierror.InternalError(err)
	}

	if err := store.Save(key); err != nil {
		if useVault {
			return clierror.VaultUnavailable(err)
		}
		return clierror.InternalError(err)
	}

	result := keygenResult{
		PrivateKeyPath:       store.Path(),
		ApplicationServerKey: key.PublicRawString(),
	}

	// The Vault backend keeps only the private key; the public PEM sibling
	// exists for file stores.
	if fs, ok := store.(*vapid.FileKeyStore); ok {
		pubPath := publicKeyPath(fs.Path())
		if err := fs.SavePublic(pubPath, key); err != nil {
			return clierror.InternalError(err)
		}
		result.PublicKeyPath = pubPath
	}

	if wantJWK, _ := cmd.Flags().GetBool("jwk"); wantJWK {
		jwkJSON, err := json.Marshal(key.JWK())
		if err != nil {
			return clierror.InternalError(err)
		}
		result.JWK = string(jwkJSON)
	}

	if outputFormat != "text" {
		return formatOutput(cmd, result)
	}

	cmd.Printf("Private key saved to %s\n", result.PrivateKeyPath)
	if result.PublicKeyPath != "" {
		cmd.Printf("Public key saved to %s\n", result.PublicKeyPath)
	}
	cmd.Println()
	cmd.Printf("Application Server Key = %s\n", keyFmt(result.ApplicationServerKey))
	if result.JWK != "" {
		cmd.Printf("JWK = %s\n", result.JWK)
	}

	return nil
}

// publicKeyPath returns the public key sibling for a private key path.
func publicKeyPath(privPath string) string {
	return filepath.Join(filepath.Dir(privPath), "public_key.pem")
}
