package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/web-push-libs/vapid/pkg/clierror"
	"github.com/web-push-libs/vapid/pkg/vapid"
)

var okFmt = color.New(color.FgGreen).SprintFunc()

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <token>",
		Short: "Sign a dashboard validation token",
		Long: `Sign a dashboard validation token to prove control of the push
signing key.

Push dashboards hand the application server a short token; returning
an ES256 signature over it proves the server holds the private key
behind its advertised public key. The signature is printed as
unpadded base64url.

With --verify, checks a previously produced signature instead and
exits non-zero when it does not match:

  vapid validate --verify <signature> <token>

Examples:
  vapid validate 4b04f8b3-2fe4-4bbf-9max
  vapid validate --verify o3N7YhB_...Aw 4b04f8b3-2fe4-4bbf-9max`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runValidate,
	}

	cmd.Flags().Bool("verify", false, "Verify <signature> <token> instead of signing")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	verify, _ := cmd.Flags().GetBool("verify")

	key, err := loadSigningKey()
	if err != nil {
		return err
	}
	signer := vapid.New(vapid.WithKey(key))

	if verify {
		if len(args) != 2 {
			return clierror.ClaimsInvalid(fmt.Errorf("--verify takes <signature> <token>"))
		}
		if !signer.VerifyToken(args[0], args[1]) {
			return clierror.SignatureInvalid()
		}
		cmd.Printf("%s\n", okFmt("Signature OK"))
		return nil
	}

	if len(args) != 1 {
		return clierror.ClaimsInvalid(fmt.Errorf("validate takes a single <token>; pass --verify to check a signature"))
	}

	signature, err := signer.Validate(args[0])
	if err != nil {
		return clierror.InternalError(err)
	}

	if outputFormat != "text" {
		return formatOutput(cmd, map[string]string{
			"token":     args[0],
			"signature": signature,
		})
	}

	cmd.Println(signature)
	return nil
}
