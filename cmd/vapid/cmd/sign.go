package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/web-push-libs/vapid/pkg/clierror"
	"github.com/web-push-libs/vapid/pkg/vapid"
)

func newSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign <claims.json>",
		Short: "Sign a claims file into push request headers",
		Long: `Sign a JSON claims file and print the headers to attach to a push
request.

The claims file is a JSON object with at least "sub" (a mailto: or
https: contact for the application server) and, under draft 01, "aud"
(the scheme://host origin of the push service). A missing "exp" is
filled with a 24 hour expiry.

Draft 01 produces an "Authorization: Bearer" header plus a Crypto-Key
header carrying the public key; draft 02 folds both into a single
"Authorization: vapid" header. When payload encryption already put a
dh= parameter in Crypto-Key, pass it with --crypto-key so the signed
segment is appended rather than clobbering it.

Examples:
  vapid sign claims.json
  vapid sign claims.json --draft 02
  vapid sign claims.json --crypto-key "dh=BGEw2wsHgLwzerjvnMTkbKrFRxdmwJ5S_k7zi7AXRZ-jMBwdk0i-Usk95AmWyGhjNUsompmu22izEJC9nNGF9-0"
  vapid sign claims.json --separator ";"`,
		Args: cobra.ExactArgs(1),
		RunE: runSign,
	}

	cmd.Flags().String("crypto-key", "", "Existing Crypto-Key value to merge with (draft 01 only)")
	cmd.Flags().String("draft", "01", "Protocol draft revision: 01 or 02")
	cmd.Flags().String("separator", vapid.DefaultCryptoKeySeparator, "Separator joining an existing Crypto-Key value")

	return cmd
}

func runSign(cmd *cobra.Command, args []string) error {
	claimsPath := args[0]

	data, err := os.ReadFile(claimsPath)
	if err != nil {
		return clierror.ClaimsFile(claimsPath, err)
	}

	var claims vapid.Claims
	if err := json.Unmarshal(data, &claims); err != nil {
		return clierror.ClaimsFile(claimsPath, err)
	}

	draftFlag, _ := cmd.Flags().GetString("draft")
	draft, err := vapid.ParseDraft(draftFlag)
	if err != nil {
		return clierror.ClaimsInvalid(err)
	}

	cryptoKey, _ := cmd.Flags().GetString("crypto-key")
	if draft == vapid.Draft02 && cryptoKey != "" {
		return clierror.ClaimsInvalid(fmt.Errorf("--crypto-key applies to draft 01 only; draft 02 carries the key inside Authorization"))
	}

	key, err := loadSigningKey()
	if err != nil {
		return err
	}

	separator, _ := cmd.Flags().GetString("separator")
	signer := vapid.New(
		vapid.WithKey(key),
		vapid.WithDraft(draft),
		vapid.WithCryptoKeySeparator(separator),
	)

	headers, err := signer.SignWithCryptoKey(claims, cryptoKey)
	if err != nil {
		if vapid.IsMissingClaim(err) {
			return clierror.ClaimsInvalid(err)
		}
		return clierror.InternalError(err)
	}

	if outputFormat != "text" {
		return formatOutput(cmd, headers)
	}

	cmd.Printf("Authorization: %s\n", headers["Authorization"])
	if cryptoKeyHeader, ok := headers["Crypto-Key"]; ok {
		cmd.Printf("Crypto-Key: %s\n", cryptoKeyHeader)
	}

	return nil
}
